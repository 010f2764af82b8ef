// Package query answers lexical and semantic questions against the store:
// keyword search with snippets and filters, embedding-similarity search, and
// single-file detail lookups.
package query

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
	"github.com/Boswecw/cortex-local/internal/embed"
	"github.com/Boswecw/cortex-local/internal/storage"
)

// detailPreviewCodeUnits is the truncation length for FileDetail's content
// preview when the full content was not requested.
const detailPreviewCodeUnits = 500

// Filters narrows a lexical search. A zero value applies no constraint.
type Filters = storage.SearchFilters

// Result mirrors storage.SearchResult at the query-surface boundary.
type Result struct {
	FileID   int64
	Path     string
	Filename string
	Snippet  string
	Score    float64
}

// SearchResponse is returned by SearchFiles.
type SearchResponse struct {
	Results     []Result
	Total       int
	QueryTimeMs int64
}

// SemanticResult is one ranked hit from SemanticSearch or FindSimilarFiles.
type SemanticResult struct {
	FileID   int64
	Path     string
	Filename string
	Score    float32
}

// FileDetail is the full-detail view of a single file, joining its metadata
// with a content preview (or the full text, if requested).
type FileDetail struct {
	File            storage.File
	WordCount       int
	Summary         string
	HasSummary      bool
	ContentPreview  string
	FullContent     string
	HasFullContent  bool
	HasEmbedding    bool
}

// Service answers queries against a Store, optionally using an embed.Provider
// for semantic search. Embedder may be nil; semantic operations then fail
// with Internal rather than panicking.
type Service struct {
	store    *storage.Store
	embedder embed.Provider
}

// New builds a query Service. embedder may be nil if only lexical search is
// needed.
func New(store *storage.Store, embedder embed.Provider) *Service {
	return &Service{store: store, embedder: embedder}
}

// SearchFiles performs lexical search: the plain FTS path when no filters or
// offset are requested, else the filtered predicate path. A limit that is
// non-positive or above 1000 is replaced by 1000.
func (s *Service) SearchFiles(query string, filters *Filters, limit, offset int) (SearchResponse, error) {
	start := time.Now()
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	var rows []storage.SearchResult
	var err error
	if isZero(filters) && offset == 0 {
		rows, err = s.store.SearchFilesFTS(query, limit)
	} else {
		rows, err = s.store.SearchFilesFiltered(query, filters, limit, offset)
	}
	if err != nil {
		return SearchResponse{}, err
	}

	results := make([]Result, len(rows))
	for i, r := range rows {
		results[i] = Result{
			FileID:   r.FileID,
			Path:     r.Path,
			Filename: r.Filename,
			Snippet:  r.Snippet,
			Score:    r.Score,
		}
	}

	return SearchResponse{
		Results:     results,
		Total:       len(results),
		QueryTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// isZero reports whether f applies no constraint. A nil *Filters applies
// none.
func isZero(f *Filters) bool {
	if f == nil {
		return true
	}
	return f.FileType == "" && f.MinSize == 0 && f.MaxSize == 0 &&
		f.DateFrom.IsZero() && f.DateTo.IsZero()
}

// SemanticSearch embeds query, loads every stored embedding, ranks by cosine
// similarity via embed.FindTopK, and joins the winners back to File rows.
func (s *Service) SemanticSearch(ctx context.Context, queryText string, limit int, threshold float32) ([]SemanticResult, error) {
	if s.embedder == nil {
		return nil, cortexerr.NewInternalf("no embedding provider configured")
	}
	if limit <= 0 {
		limit = 50
	}

	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, cortexerr.NewInternal(err)
	}

	embeddings, err := s.store.GetAllEmbeddings()
	if err != nil {
		return nil, err
	}

	candidates := make([]embed.Candidate, len(embeddings))
	for i, e := range embeddings {
		candidates[i] = embed.Candidate{ID: e.FileID, Vector: e.Vector}
	}

	return s.rankAndJoin(queryVec, candidates, limit, threshold)
}

// FindSimilarFiles loads fileID's own embedding, excludes it from the
// candidate set, and ranks the rest exactly as SemanticSearch does.
func (s *Service) FindSimilarFiles(fileID int64, limit int, threshold float32) ([]SemanticResult, error) {
	if limit <= 0 {
		limit = 10
	}

	target, err := s.store.GetEmbedding(fileID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, cortexerr.NewFileNotFound(fileFoundMessage(fileID))
	}

	embeddings, err := s.store.GetAllEmbeddings()
	if err != nil {
		return nil, err
	}

	candidates := make([]embed.Candidate, 0, len(embeddings))
	for _, e := range embeddings {
		if e.FileID == fileID {
			continue
		}
		candidates = append(candidates, embed.Candidate{ID: e.FileID, Vector: e.Vector})
	}

	return s.rankAndJoin(target.Vector, candidates, limit, threshold)
}

func (s *Service) rankAndJoin(queryVec []float32, candidates []embed.Candidate, limit int, threshold float32) ([]SemanticResult, error) {
	scored := embed.FindTopK(queryVec, candidates, limit, threshold)

	results := make([]SemanticResult, 0, len(scored))
	for _, sc := range scored {
		f, err := s.store.GetFileByID(sc.ID)
		if err != nil {
			if cortexerr.Is(err, cortexerr.KindFileNotFound) {
				continue
			}
			return nil, err
		}
		results = append(results, SemanticResult{
			FileID:   f.ID,
			Path:     f.Path,
			Filename: f.Filename,
			Score:    sc.Score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// GetFileDetail returns a file's metadata plus a content preview. When
// includeFullContent is true, FullContent carries the complete text.
func (s *Service) GetFileDetail(fileID int64, includeFullContent bool) (FileDetail, error) {
	f, err := s.store.GetFileByID(fileID)
	if err != nil {
		return FileDetail{}, err
	}

	detail := FileDetail{File: *f}

	content, err := s.store.GetFileContent(fileID)
	if err != nil {
		return FileDetail{}, err
	}
	if content != nil {
		detail.WordCount = content.WordCount
		detail.Summary = content.Summary
		detail.HasSummary = content.HasSummary
		detail.ContentPreview = truncatePreview(content.TextContent)
		if includeFullContent {
			detail.FullContent = content.TextContent
			detail.HasFullContent = true
		}
	}

	emb, err := s.store.GetEmbedding(fileID)
	if err != nil {
		return FileDetail{}, err
	}
	detail.HasEmbedding = emb != nil

	return detail, nil
}

// Stats is the response for get_search_stats.
type Stats struct {
	TotalFiles     int
	IndexedFiles   int
	TotalSizeBytes int64
}

// GetSearchStats reports aggregate counts from the store.
func (s *Service) GetSearchStats() (Stats, error) {
	dbStats, err := s.store.GetDBStats()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalFiles:     dbStats.TotalFiles,
		IndexedFiles:   dbStats.IndexedFiles,
		TotalSizeBytes: dbStats.TotalSizeBytes,
	}, nil
}

// EmbeddingStatus is the response for get_embedding_status.
type EmbeddingStatus struct {
	TotalFiles      int
	EmbeddedFiles   int
	PendingFiles    int
	ModelPresent    bool
	ModelVersion    string
}

// GetEmbeddingStatus reports how many files have embeddings versus how many
// are still pending.
func (s *Service) GetEmbeddingStatus(modelVersion string) (EmbeddingStatus, error) {
	dbStats, err := s.store.GetDBStats()
	if err != nil {
		return EmbeddingStatus{}, err
	}
	embedded, err := s.store.CountEmbeddings()
	if err != nil {
		return EmbeddingStatus{}, err
	}
	return EmbeddingStatus{
		TotalFiles:    dbStats.IndexedFiles,
		EmbeddedFiles: embedded,
		PendingFiles:  dbStats.IndexedFiles - embedded,
		ModelPresent:  s.embedder != nil,
		ModelVersion:  modelVersion,
	}, nil
}

// GenerateEmbeddings embeds and stores vectors for the given file IDs,
// skipping files that have no extracted text. Returns the count generated.
func (s *Service) GenerateEmbeddings(ctx context.Context, fileIDs []int64, modelVersion string) (int, error) {
	if s.embedder == nil {
		return 0, cortexerr.NewInternalf("no embedding provider configured")
	}

	generated := 0
	for _, id := range fileIDs {
		content, err := s.store.GetFileContent(id)
		if err != nil {
			return generated, err
		}
		if content == nil || !content.HasText || content.TextContent == "" {
			continue
		}

		vec, err := s.embedder.Embed(ctx, content.TextContent)
		if err != nil {
			return generated, cortexerr.NewInternal(err)
		}
		if err := s.store.UpsertEmbedding(id, vec, modelVersion); err != nil {
			return generated, err
		}
		generated++
	}
	return generated, nil
}

// GenerateAllEmbeddings backfills embeddings for every indexed file that
// lacks one, in batches of batchSize.
func (s *Service) GenerateAllEmbeddings(ctx context.Context, batchSize int, modelVersion string) (int, error) {
	if s.embedder == nil {
		return 0, cortexerr.NewInternalf("no embedding provider configured")
	}
	if batchSize <= 0 {
		batchSize = 32
	}

	total := 0
	for {
		files, err := s.store.GetFilesWithoutEmbeddings(batchSize)
		if err != nil {
			return total, err
		}
		if len(files) == 0 {
			return total, nil
		}

		ids := make([]int64, len(files))
		for i, f := range files {
			ids[i] = f.ID
		}
		n, err := s.GenerateEmbeddings(ctx, ids, modelVersion)
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			// every candidate file lacked extracted text; avoid looping forever
			return total, nil
		}
	}
}

func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= detailPreviewCodeUnits {
		return text
	}
	return string(runes[:detailPreviewCodeUnits]) + "..."
}

func fileFoundMessage(fileID int64) string {
	return "file id has no embedding: " + strconv.FormatInt(fileID, 10)
}
