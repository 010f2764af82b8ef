package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Boswecw/cortex-local/internal/export"
)

var (
	exportContextOut     string
	exportContextProject string
	exportContextPrompts bool

	exportPackageOut          string
	exportPackageTenant       string
	exportPackageMode         string
	exportPackageCollectionID string
	exportPackageEmbeddings   bool
	exportPackageModel        string

	exportPreviewTenant     string
	exportPreviewMode       string
	exportPreviewEmbeddings bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed content for use by other tools",
}

var exportContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Export a Claude-ready context bundle (CONTEXT.md, prompts, config)",
	RunE:  runExportContext,
}

var exportPackageCmd = &cobra.Command{
	Use:   "package",
	Short: "Export a portable JSON package of chunks (and optionally embeddings)",
	RunE:  runExportPackage,
}

var exportPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Estimate what a package export would contain, without writing it",
	RunE:  runExportPreview,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportContextCmd, exportPackageCmd, exportPreviewCmd)

	exportContextCmd.Flags().StringVar(&exportContextOut, "output", "", "directory to write the context bundle into")
	exportContextCmd.Flags().StringVar(&exportContextProject, "project-name", "Project", "project name used in generated documents")
	exportContextCmd.Flags().BoolVar(&exportContextPrompts, "prompts", true, "include the prompts/ template directory")
	exportContextCmd.MarkFlagRequired("output")

	exportPackageCmd.Flags().StringVar(&exportPackageOut, "output", "", "file to write the portable package to")
	exportPackageCmd.Flags().StringVar(&exportPackageTenant, "tenant-id", "", "tenant identifier recorded in the package")
	exportPackageCmd.Flags().StringVar(&exportPackageMode, "mode", "full", "export mode: full, incremental, or collection")
	exportPackageCmd.Flags().StringVar(&exportPackageCollectionID, "collection-id", "", "collection identifier recorded on each chunk")
	exportPackageCmd.Flags().BoolVar(&exportPackageEmbeddings, "embeddings", false, "include per-chunk embeddings")
	exportPackageCmd.Flags().StringVar(&exportPackageModel, "model-version", "", "embedding model version recorded in metadata")
	exportPackageCmd.MarkFlagRequired("output")

	exportPreviewCmd.Flags().StringVar(&exportPreviewTenant, "tenant-id", "", "tenant identifier (unused by the estimate itself)")
	exportPreviewCmd.Flags().StringVar(&exportPreviewMode, "mode", "full", "export mode: full, incremental, or collection")
	exportPreviewCmd.Flags().BoolVar(&exportPreviewEmbeddings, "embeddings", false, "count files with embeddings in the estimate")
}

func runExportContext(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.surface.ExportContext(export.BundleConfig{
		OutputPath:     exportContextOut,
		ProjectName:    exportContextProject,
		IncludePrompts: exportContextPrompts,
	})
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d files to %s\n", len(result.Paths), exportContextOut)
	fmt.Printf("  context:  %s\n", result.ContextFile)
	fmt.Printf("  starter:  %s\n", result.StarterPromptFile)
	for _, p := range result.PromptFiles {
		fmt.Printf("  prompt:   %s\n", p)
	}
	fmt.Printf("stats: %d files, %d chunks, %d with embeddings\n",
		result.Stats.TotalFiles, result.Stats.TotalChunks, result.Stats.FilesWithEmbeddings)
	return nil
}

func runExportPackage(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	path, err := application.surface.ExportPackage(export.PackageConfig{
		OutputPath:        exportPackageOut,
		TenantID:          exportPackageTenant,
		IncludeEmbeddings: exportPackageEmbeddings,
		ModelVersion:      exportPackageModel,
		Mode:              exportPackageMode,
		CollectionID:      exportPackageCollectionID,
	})
	if err != nil {
		return err
	}

	fmt.Printf("wrote package to %s\n", path)
	return nil
}

func runExportPreview(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	preview, err := application.surface.GetExportPreview(export.PackageConfig{
		TenantID:          exportPreviewTenant,
		Mode:              exportPreviewMode,
		IncludeEmbeddings: exportPreviewEmbeddings,
	})
	if err != nil {
		return err
	}

	fmt.Printf("files: %d\n", preview.TotalFiles)
	fmt.Printf("estimated chunks: %d\n", preview.EstimatedChunks)
	fmt.Printf("files with embeddings: %d\n", preview.FilesWithEmbeddings)
	return nil
}
