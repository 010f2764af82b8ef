package export

import (
	"encoding/json"
	"fmt"
	"time"
)

// toolVersion is reported in every portable package's metadata.
const toolVersion = "0.1.0"

// PackageConfig configures a single portable-package export.
type PackageConfig struct {
	OutputPath        string
	TenantID          string
	IncludeEmbeddings bool
	ModelVersion      string
	// Mode is one of "full", "incremental", "collection". Per the source
	// system this export never actually filters by collection; the field is
	// recorded in metadata as a forward-compatibility stub.
	Mode           string
	CollectionID   string
	CollectionName string
}

// ChunkMetadata carries per-chunk provenance.
type ChunkMetadata struct {
	FilePath       string    `json:"file_path"`
	FileType       string    `json:"file_type"`
	FileName       string    `json:"file_name"`
	ModifiedAt     time.Time `json:"modified_at"`
	CollectionID   string    `json:"collection_id,omitempty"`
	CollectionName string    `json:"collection_name,omitempty"`
}

// PackageChunk is one chunk entry in the portable package.
type PackageChunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Content    string        `json:"content"`
	Embedding  []float32     `json:"embedding,omitempty"`
	Position   int           `json:"position"`
	TokenCount int           `json:"token_count"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// PackageMetadata summarizes the package's contents.
type PackageMetadata struct {
	ToolVersion    string `json:"tool_version"`
	CollectionID   string `json:"collection_id,omitempty"`
	CollectionName string `json:"collection_name,omitempty"`
	TotalFiles     int    `json:"total_files"`
	TotalChunks    int    `json:"total_chunks"`
	HasEmbeddings  bool   `json:"has_embeddings"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	ExportMode     string `json:"export_mode"`
}

// Package is the top-level portable export document.
type Package struct {
	Version          string          `json:"version"`
	Source           string          `json:"source"`
	TenantID         string          `json:"tenant_id"`
	ExportTimestamp  time.Time       `json:"export_timestamp"`
	Metadata         PackageMetadata `json:"metadata"`
	Chunks           []PackageChunk  `json:"chunks"`
}

// maxFilesPerExport bounds how many File rows a single export reads, as
// list_files is paginated.
const maxFilesPerExport = 10000

// BuildPackage assembles a Package from the store's current contents. It
// does not write anything to disk; ExportPackage does that after path
// validation.
func (s *Service) BuildPackage(cfg PackageConfig) (Package, error) {
	files, err := s.store.ListFiles(maxFilesPerExport, 0)
	if err != nil {
		return Package{}, err
	}

	var chunks []PackageChunk
	for _, f := range files {
		content, err := s.store.GetFileContent(f.ID)
		if err != nil {
			return Package{}, err
		}
		if content == nil || !content.HasText {
			continue
		}

		var embedding []float32
		if cfg.IncludeEmbeddings {
			emb, err := s.store.GetEmbedding(f.ID)
			if err != nil {
				return Package{}, err
			}
			if emb != nil {
				embedding = emb.Vector
			}
		}

		for _, c := range ChunkText(content.TextContent) {
			chunk := PackageChunk{
				ID:         fmt.Sprintf("%d-chunk-%d", f.ID, c.Position),
				DocumentID: fmt.Sprintf("%d", f.ID),
				Content:    c.Content,
				Position:   c.Position,
				TokenCount: c.TokenCount,
				Metadata: ChunkMetadata{
					FilePath:       f.Path,
					FileType:       f.FileType,
					FileName:       f.Filename,
					ModifiedAt:     f.ModifiedAt,
					CollectionID:   cfg.CollectionID,
					CollectionName: cfg.CollectionName,
				},
			}
			chunk.Embedding = embedding
			chunks = append(chunks, chunk)
		}
	}

	var embeddingModel string
	if cfg.IncludeEmbeddings {
		embeddingModel = cfg.ModelVersion
	}

	pkg := Package{
		Version:         "1.0",
		Source:          "cortex_local",
		TenantID:        cfg.TenantID,
		ExportTimestamp: time.Now().UTC(),
		Metadata: PackageMetadata{
			ToolVersion:    toolVersion,
			CollectionID:   cfg.CollectionID,
			CollectionName: cfg.CollectionName,
			TotalFiles:     len(files),
			TotalChunks:    len(chunks),
			HasEmbeddings:  cfg.IncludeEmbeddings,
			EmbeddingModel: embeddingModel,
			ExportMode:     cfg.Mode,
		},
		Chunks: chunks,
	}
	return pkg, nil
}

// ExportPackage validates cfg.OutputPath, builds the Package, and writes it
// as pretty-printed JSON. Returns the written file's path.
func (s *Service) ExportPackage(cfg PackageConfig) (string, error) {
	validated, err := ValidatePath(cfg.OutputPath)
	if err != nil {
		return "", err
	}

	pkg, err := s.BuildPackage(cfg)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export package: %w", err)
	}

	if err := writeAtomic(validated, data); err != nil {
		return "", err
	}
	return validated, nil
}

// Preview is the response for get_export_preview: an estimate of what a
// package export would contain, without generating chunk content.
type Preview struct {
	TotalFiles          int
	EstimatedChunks     int
	FilesWithEmbeddings int
}

// GetExportPreview estimates package contents from word counts without
// materializing chunk text.
func (s *Service) GetExportPreview(cfg PackageConfig) (Preview, error) {
	files, err := s.store.ListFiles(maxFilesPerExport, 0)
	if err != nil {
		return Preview{}, err
	}

	var preview Preview
	preview.TotalFiles = len(files)

	for _, f := range files {
		content, err := s.store.GetFileContent(f.ID)
		if err != nil {
			return Preview{}, err
		}
		if content == nil || !content.HasText {
			continue
		}
		if content.WordCount == 0 {
			preview.EstimatedChunks++
			continue
		}
		preview.EstimatedChunks += (content.WordCount + wordsPerChunk - 1) / wordsPerChunk

		if !cfg.IncludeEmbeddings {
			continue
		}
		emb, err := s.store.GetEmbedding(f.ID)
		if err != nil {
			return Preview{}, err
		}
		if emb != nil {
			preview.FilesWithEmbeddings++
		}
	}
	return preview, nil
}
