// Package command is the thin adapter translating external requests (CLI
// flags, MCP tool calls) into calls on the pipeline, query, and export
// packages. It carries no business logic of its own beyond argument
// defaulting and response shaping.
package command

import (
	"context"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
	"github.com/Boswecw/cortex-local/internal/export"
	"github.com/Boswecw/cortex-local/internal/pipeline"
	"github.com/Boswecw/cortex-local/internal/query"
)

const (
	defaultSemanticLimit     = 50
	defaultSimilarLimit      = 10
	defaultSimilarityThresh  = 0.7
	defaultEmbedBatchSize    = 32
)

// Surface exposes every command-table operation of the external interface
// over a single Pipeline/Query/Export trio.
type Surface struct {
	Pipeline     *pipeline.Pipeline
	Query        *query.Service
	Export       *export.Service
	ModelVersion string
}

// New builds a command Surface.
func New(p *pipeline.Pipeline, q *query.Service, e *export.Service, modelVersion string) *Surface {
	return &Surface{Pipeline: p, Query: q, Export: e, ModelVersion: modelVersion}
}

// StartIndexing kicks off a run over the given roots in a background
// goroutine so callers get an immediate ack; events follow on Pipeline.Events.
func (s *Surface) StartIndexing(ctx context.Context, paths []string) error {
	if s.Pipeline.IsActive() {
		return cortexerr.NewIndexingInProgress()
	}
	go func() {
		_, _ = s.Pipeline.Start(ctx, paths)
	}()
	return nil
}

// StopIndexing requests cancellation of the active run.
func (s *Surface) StopIndexing() error {
	return s.Pipeline.Stop()
}

// IndexStatus is the response for get_index_status.
type IndexStatus struct {
	IsActive bool
	Total    int
	Indexed  int
	Current  string
	Errors   []string
	Percent  float64
}

// GetIndexStatus returns a snapshot of the active (or most recent) run.
func (s *Surface) GetIndexStatus() IndexStatus {
	status := s.Pipeline.Status()
	return IndexStatus{
		IsActive: status.IsActive,
		Total:    status.Total,
		Indexed:  status.Indexed,
		Current:  status.CurrentPath,
		Errors:   status.Errors,
		Percent:  status.Percent,
	}
}

// SearchFiles delegates to the query service, which replaces a non-positive
// or over-1000 limit with 1000.
func (s *Surface) SearchFiles(queryText string, filters *query.Filters, limit, offset int) (query.SearchResponse, error) {
	return s.Query.SearchFiles(queryText, filters, limit, offset)
}

// GetFileDetail delegates to the query service.
func (s *Surface) GetFileDetail(id int64, includeFullContent bool) (query.FileDetail, error) {
	return s.Query.GetFileDetail(id, includeFullContent)
}

// GetSearchStats delegates to the query service.
func (s *Surface) GetSearchStats() (query.Stats, error) {
	return s.Query.GetSearchStats()
}

// GetEmbeddingStatus delegates to the query service.
func (s *Surface) GetEmbeddingStatus() (query.EmbeddingStatus, error) {
	return s.Query.GetEmbeddingStatus(s.ModelVersion)
}

// GenerateEmbeddings delegates to the query service.
func (s *Surface) GenerateEmbeddings(ctx context.Context, fileIDs []int64) (int, error) {
	return s.Query.GenerateEmbeddings(ctx, fileIDs, s.ModelVersion)
}

// GenerateAllEmbeddings delegates to the query service, defaulting batchSize
// when zero.
func (s *Surface) GenerateAllEmbeddings(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultEmbedBatchSize
	}
	return s.Query.GenerateAllEmbeddings(ctx, batchSize, s.ModelVersion)
}

// SemanticSearch delegates to the query service, applying the documented
// defaults of limit=50, threshold=0.7.
func (s *Surface) SemanticSearch(ctx context.Context, queryText string, limit int, threshold float32) ([]query.SemanticResult, error) {
	if limit <= 0 {
		limit = defaultSemanticLimit
	}
	if threshold <= 0 {
		threshold = defaultSimilarityThresh
	}
	return s.Query.SemanticSearch(ctx, queryText, limit, threshold)
}

// FindSimilarFiles delegates to the query service, applying the documented
// defaults of limit=10, threshold=0.7.
func (s *Surface) FindSimilarFiles(fileID int64, limit int, threshold float32) ([]query.SemanticResult, error) {
	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if threshold <= 0 {
		threshold = defaultSimilarityThresh
	}
	return s.Query.FindSimilarFiles(fileID, limit, threshold)
}

// ExportContext delegates to the export service.
func (s *Surface) ExportContext(cfg export.BundleConfig) (export.BundleResult, error) {
	return s.Export.ExportContext(cfg)
}

// ExportPackage delegates to the export service.
func (s *Surface) ExportPackage(cfg export.PackageConfig) (string, error) {
	return s.Export.ExportPackage(cfg)
}

// GetExportPreview delegates to the export service.
func (s *Surface) GetExportPreview(cfg export.PackageConfig) (export.Preview, error) {
	return s.Export.GetExportPreview(cfg)
}
