package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Boswecw/cortex-local/internal/storage"
)

// BundleConfig configures a single context-bundle export.
type BundleConfig struct {
	OutputPath     string
	ProjectName    string
	IncludePrompts bool
}

// Stats summarizes a completed export, independent of which shape it was.
type Stats struct {
	TotalFiles          int
	TotalChunks         int
	TotalSizeBytes      int64
	FilesWithEmbeddings int
	PromptsGenerated    int
}

// BundleResult is the response for export_context.
type BundleResult struct {
	ContextFile      string
	StarterPromptFile string
	PromptFiles      []string
	Paths            []string
	Stats            Stats
	ExportedAt       time.Time
}

var promptTemplateNames = []string{"feature.md", "bugfix.md", "refactor.md", "tests.md", "documentation.md"}

// ExportContext builds the context bundle: CONTEXT.md, STARTER_PROMPT.md, a
// prompts/ directory with five fixed templates, a .claude/config.json, and a
// summarizing README.md.
func (s *Service) ExportContext(cfg BundleConfig) (BundleResult, error) {
	outputDir, err := ValidatePath(cfg.OutputPath)
	if err != nil {
		return BundleResult{}, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return BundleResult{}, fmt.Errorf("create export directory %s: %w", outputDir, err)
	}

	files, err := s.store.ListFiles(maxFilesPerExport, 0)
	if err != nil {
		return BundleResult{}, err
	}

	dbStats, err := s.store.GetDBStats()
	if err != nil {
		return BundleResult{}, err
	}

	projectName := cfg.ProjectName
	if projectName == "" {
		projectName = "Project"
	}

	stats := Stats{
		TotalFiles:     dbStats.IndexedFiles,
		TotalSizeBytes: dbStats.TotalSizeBytes,
	}

	var paths []string

	contextContent, chunkCount, embeddedCount, err := s.buildContextMarkdown(files, projectName)
	if err != nil {
		return BundleResult{}, err
	}
	stats.TotalChunks = chunkCount
	stats.FilesWithEmbeddings = embeddedCount

	contextFile, err := writeFileAtomic(outputDir, "CONTEXT.md", contextContent)
	if err != nil {
		return BundleResult{}, err
	}
	paths = append(paths, contextFile)

	starterPrompt := buildStarterPrompt(projectName, dbStats.TotalFiles, dbStats.IndexedFiles)
	starterFile, err := writeFileAtomic(outputDir, "STARTER_PROMPT.md", starterPrompt)
	if err != nil {
		return BundleResult{}, err
	}
	paths = append(paths, starterFile)
	stats.PromptsGenerated = 1

	var promptFiles []string
	if cfg.IncludePrompts {
		promptsDir := filepath.Join(outputDir, "prompts")
		if err := os.MkdirAll(promptsDir, 0o755); err != nil {
			return BundleResult{}, fmt.Errorf("create prompts directory: %w", err)
		}
		for _, name := range promptTemplateNames {
			content := buildPromptTemplate(name, projectName)
			path, err := writeFileAtomic(promptsDir, name, content)
			if err != nil {
				return BundleResult{}, err
			}
			promptFiles = append(promptFiles, path)
			paths = append(paths, path)
			stats.PromptsGenerated++
		}
	}

	claudeDir := filepath.Join(outputDir, ".claude")
	if err := os.MkdirAll(claudeDir, 0o755); err != nil {
		return BundleResult{}, fmt.Errorf("create .claude directory: %w", err)
	}
	exportedAt := time.Now().UTC()
	claudeConfig := buildClaudeConfig(projectName, exportedAt)
	claudeFile, err := writeFileAtomic(claudeDir, "config.json", claudeConfig)
	if err != nil {
		return BundleResult{}, err
	}
	paths = append(paths, claudeFile)

	readme := buildExportReadme(projectName, exportedAt, stats)
	readmeFile, err := writeFileAtomic(outputDir, "README.md", readme)
	if err != nil {
		return BundleResult{}, err
	}
	paths = append(paths, readmeFile)

	return BundleResult{
		ContextFile:       contextFile,
		StarterPromptFile: starterFile,
		PromptFiles:       promptFiles,
		Paths:             paths,
		Stats:             stats,
		ExportedAt:        exportedAt,
	}, nil
}

// buildContextMarkdown assembles CONTEXT.md from stored file content,
// returning the rendered document plus the chunk and embedded-file counts
// that feed into export stats.
func (s *Service) buildContextMarkdown(files []storage.File, projectName string) (string, int, int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Indexed Context\n\n", projectName)
	fmt.Fprintf(&b, "This document summarizes the indexed files available to an AI assistant working on %s.\n\n", projectName)

	totalChunks := 0
	embedded := 0

	for _, f := range files {
		content, err := s.store.GetFileContent(f.ID)
		if err != nil {
			return "", 0, 0, err
		}
		if content == nil || !content.HasText {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", f.Path)
		fmt.Fprintf(&b, "- Type: `%s`\n", f.FileType)
		fmt.Fprintf(&b, "- Size: %d bytes\n", f.Size)
		fmt.Fprintf(&b, "- Last indexed: %s\n\n", f.LastIndexed.Format(time.RFC3339))
		if content.HasSummary && content.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", content.Summary)
		}

		totalChunks += len(ChunkText(content.TextContent))

		emb, err := s.store.GetEmbedding(f.ID)
		if err != nil {
			return "", 0, 0, err
		}
		if emb != nil {
			embedded++
		}
	}

	return b.String(), totalChunks, embedded, nil
}

func buildStarterPrompt(projectName string, totalFiles, indexedFiles int) string {
	return fmt.Sprintf(`# Starter Prompt — %s

This project has %d known files, %d of which are indexed with extracted content.

Load CONTEXT.md first for a full summary of the indexed files, then describe
the task you want help with. Reference specific files by path when asking
questions so answers stay grounded in the actual indexed content.
`, projectName, totalFiles, indexedFiles)
}

func buildPromptTemplate(name, projectName string) string {
	title := strings.ToUpper(strings.TrimSuffix(name, ".md"))
	switch name {
	case "feature.md":
		return fmt.Sprintf("# %s\n\nImplement a new feature in %s.\n\nReplace `{FEATURE_NAME}` and `{FEATURE_DESCRIPTION}` with the feature to build, then follow the patterns described in CONTEXT.md.\n", title, projectName)
	case "bugfix.md":
		return fmt.Sprintf("# %s\n\nFix a bug in %s.\n\nReplace `{BUG_DESCRIPTION}` and `{STEPS_TO_REPRODUCE}` with the bug details, then locate the relevant code via CONTEXT.md before changing anything.\n", title, projectName)
	case "refactor.md":
		return fmt.Sprintf("# %s\n\nRefactor a module in %s.\n\nReplace `{MODULE_PATH}` and `{REFACTORING_GOALS}` with the target module and goals, keeping behavior unchanged unless stated otherwise.\n", title, projectName)
	case "tests.md":
		return fmt.Sprintf("# %s\n\nAdd test coverage for %s.\n\nReplace `{MODULE_PATH}` with the module to test. Follow the existing test patterns described in CONTEXT.md.\n", title, projectName)
	case "documentation.md":
		return fmt.Sprintf("# %s\n\nUpdate documentation for %s.\n\nReplace `{MODULE_PATH}` with the module to document. Keep the style consistent with CONTEXT.md.\n", title, projectName)
	default:
		return fmt.Sprintf("# %s\n\n%s\n", title, projectName)
	}
}

func buildClaudeConfig(projectName string, generatedAt time.Time) string {
	return fmt.Sprintf(`{
  "cortex_export": {
    "source_directory": %q,
    "generated_at": %q
  }
}
`, projectName, generatedAt.Format(time.RFC3339))
}

func buildExportReadme(projectName string, exportedAt time.Time, stats Stats) string {
	return fmt.Sprintf(`# %s — Export

Generated on %s.

## Contents

- CONTEXT.md — indexed project context
- STARTER_PROMPT.md — initial session prompt
- prompts/ — feature, bugfix, refactor, tests, and documentation templates
- .claude/config.json — export configuration

## Stats

- Files: %d
- Chunks: %d
- Files with embeddings: %d
`, projectName, exportedAt.Format("2006-01-02 15:04:05 MST"), stats.TotalFiles, stats.TotalChunks, stats.FilesWithEmbeddings)
}
