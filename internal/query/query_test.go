package query

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Boswecw/cortex-local/internal/embed"
	"github.com/Boswecw/cortex-local/internal/storage"
)

// Test plan:
// - SearchFiles finds indexed content by keyword and reports timing
// - SemanticSearch ranks by cosine similarity and respects threshold
// - FindSimilarFiles excludes the target file itself from its own results
// - GetFileDetail truncates the preview unless full content is requested
// - semantic operations fail with Internal, not a panic, when no embedder is set

func newTestService(t *testing.T, embedder embed.Provider) (*Service, *storage.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	store, err := storage.Open(dbPath, 384)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, embedder), store
}

func insertFile(t *testing.T, store *storage.Store, path, text string) int64 {
	t.Helper()
	now := time.Now().UTC()
	id, err := store.InsertFile(path, filepath.Base(path), "txt", int64(len(text)), now, now, "", "/tmp")
	require.NoError(t, err)
	require.NoError(t, store.UpsertFileContent(id, text, true, "", false))
	return id
}

func TestSearchFiles_FindsByKeyword(t *testing.T) {
	svc, store := newTestService(t, nil)
	insertFile(t, store, "/tmp/a.txt", "the quick brown fox")
	insertFile(t, store, "/tmp/b.txt", "jumps over the lazy dog")

	resp, err := svc.SearchFiles("fox", nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	require.Equal(t, "/tmp/a.txt", resp.Results[0].Path)
	require.GreaterOrEqual(t, resp.QueryTimeMs, int64(0))
}

func TestSemanticSearch_RequiresEmbedder(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.SemanticSearch(context.Background(), "anything", 10, 0.5)
	require.Error(t, err)
}

func TestSemanticSearch_RanksByCosineSimilarity(t *testing.T) {
	mock := embed.NewMockProvider()
	svc, store := newTestService(t, mock)

	id1 := insertFile(t, store, "/tmp/a.txt", "alpha content")
	id2 := insertFile(t, store, "/tmp/b.txt", "beta content")

	vec1, err := mock.Embed(context.Background(), "alpha content")
	require.NoError(t, err)
	vec2, err := mock.Embed(context.Background(), "beta content")
	require.NoError(t, err)

	require.NoError(t, store.UpsertEmbedding(id1, vec1, "mock-v1"))
	require.NoError(t, store.UpsertEmbedding(id2, vec2, "mock-v1"))

	results, err := svc.SemanticSearch(context.Background(), "alpha content", 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	require.Equal(t, id1, results[0].FileID)
}

func TestFindSimilarFiles_ExcludesTarget(t *testing.T) {
	mock := embed.NewMockProvider()
	svc, store := newTestService(t, mock)

	id1 := insertFile(t, store, "/tmp/a.txt", "alpha content")
	id2 := insertFile(t, store, "/tmp/b.txt", "beta content")

	vec1, err := mock.Embed(context.Background(), "alpha content")
	require.NoError(t, err)
	vec2, err := mock.Embed(context.Background(), "beta content")
	require.NoError(t, err)

	require.NoError(t, store.UpsertEmbedding(id1, vec1, "mock-v1"))
	require.NoError(t, store.UpsertEmbedding(id2, vec2, "mock-v1"))

	results, err := svc.FindSimilarFiles(id1, 10, 0)
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, id1, r.FileID)
	}
}

func TestFindSimilarFiles_UnknownFileIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, embed.NewMockProvider())
	_, err := svc.FindSimilarFiles(99999, 10, 0)
	require.Error(t, err)
}

func TestGetFileDetail_PreviewVsFullContent(t *testing.T) {
	svc, store := newTestService(t, nil)
	longText := make([]byte, detailPreviewCodeUnits*2)
	for i := range longText {
		longText[i] = 'x'
	}
	id := insertFile(t, store, "/tmp/long.txt", string(longText))

	preview, err := svc.GetFileDetail(id, false)
	require.NoError(t, err)
	require.True(t, len(preview.ContentPreview) < len(longText))
	require.False(t, preview.HasFullContent)

	full, err := svc.GetFileDetail(id, true)
	require.NoError(t, err)
	require.Equal(t, string(longText), full.FullContent)
	require.True(t, full.HasFullContent)
}

func TestGetEmbeddingStatus_CountsPending(t *testing.T) {
	mock := embed.NewMockProvider()
	svc, store := newTestService(t, mock)
	id1 := insertFile(t, store, "/tmp/a.txt", "alpha")
	insertFile(t, store, "/tmp/b.txt", "beta")

	vec, err := mock.Embed(context.Background(), "alpha")
	require.NoError(t, err)
	require.NoError(t, store.UpsertEmbedding(id1, vec, "mock-v1"))

	status, err := svc.GetEmbeddingStatus("mock-v1")
	require.NoError(t, err)
	require.Equal(t, 2, status.TotalFiles)
	require.Equal(t, 1, status.EmbeddedFiles)
	require.Equal(t, 1, status.PendingFiles)
	require.True(t, status.ModelPresent)
}

func TestGenerateAllEmbeddings_BackfillsMissing(t *testing.T) {
	mock := embed.NewMockProvider()
	svc, store := newTestService(t, mock)
	insertFile(t, store, "/tmp/a.txt", "alpha")
	insertFile(t, store, "/tmp/b.txt", "beta")

	n, err := svc.GenerateAllEmbeddings(context.Background(), 32, "mock-v1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	count, err := store.CountEmbeddings()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
