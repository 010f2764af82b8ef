package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var embedBatchSize int

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Manage embeddings",
}

var embedStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show embedding coverage",
	RunE:  runEmbedStatus,
}

var embedGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Backfill embeddings for indexed files that lack one",
	RunE:  runEmbedGenerate,
}

func init() {
	rootCmd.AddCommand(embedCmd)
	embedCmd.AddCommand(embedStatusCmd, embedGenerateCmd)
	embedGenerateCmd.Flags().IntVar(&embedBatchSize, "batch-size", 32, "files embedded per batch")
}

func runEmbedStatus(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	status, err := application.surface.GetEmbeddingStatus()
	if err != nil {
		return err
	}

	fmt.Printf("model present: %v\n", status.ModelPresent)
	fmt.Printf("embedded: %d/%d (pending %d)\n", status.EmbeddedFiles, status.TotalFiles, status.PendingFiles)
	return nil
}

func runEmbedGenerate(cmd *cobra.Command, args []string) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer application.Close()

	n, err := application.surface.GenerateAllEmbeddings(context.Background(), embedBatchSize)
	if err != nil {
		return err
	}
	fmt.Printf("generated %d embeddings\n", n)
	return nil
}
