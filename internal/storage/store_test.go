package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test plan:
// - insert/read round trip preserves attribute values, last_indexed advances
// - upsert_file_content is idempotent and keeps FTS in sync
// - search_files_fts finds content by word, rejects empty query
// - soft-deleted files never appear in search or list
// - get_db_stats counts match direct row counts

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	s, err := Open(dbPath, 384)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertFile_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	id, err := s.InsertFile("/tmp/rust.txt", "rust.txt", "txt", 42, now, now, "abc123", "/tmp")
	require.NoError(t, err)

	got, err := s.GetFileByID(id)
	require.NoError(t, err)
	require.Equal(t, "/tmp/rust.txt", got.Path)
	require.Equal(t, "rust.txt", got.Filename)
	require.Equal(t, int64(42), got.Size)
	require.False(t, got.IsDeleted)
	require.True(t, !got.LastIndexed.Before(now))
}

func TestUpsertFileContent_IsIdempotentAndUpdatesFTS(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	id, err := s.InsertFile("/tmp/db.txt", "db.txt", "txt", 10, now, now, "", "/tmp")
	require.NoError(t, err)

	require.NoError(t, s.UpsertFileContent(id, "databases", true, "", false))
	results, err := s.SearchFilesFTS("databases", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, id, results[0].FileID)

	// Applying the identical payload again must not change word_count or
	// create a duplicate FTS row.
	require.NoError(t, s.UpsertFileContent(id, "databases", true, "", false))
	results, err = s.SearchFilesFTS("databases", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	fc, err := s.GetFileContent(id)
	require.NoError(t, err)
	require.Equal(t, 1, fc.WordCount)

	// Upsert replaces content: "databases" no longer matches, "rust" does.
	require.NoError(t, s.UpsertFileContent(id, "rust programming", true, "", false))
	results, err = s.SearchFilesFTS("databases", 10)
	require.NoError(t, err)
	require.Len(t, results, 0)

	results, err = s.SearchFilesFTS("rust", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchFilesFTS_EmptyQueryRejected(t *testing.T) {
	s := openTestStore(t)
	_, err := s.SearchFilesFTS("   ", 10)
	require.Error(t, err)
}

func TestSearchFilesFTS_LexicalBasics(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	rustID, err := s.InsertFile("/tmp/rust.txt", "rust.txt", "txt", 1, now, now, "", "/tmp")
	require.NoError(t, err)
	require.NoError(t, s.UpsertFileContent(rustID, "Rust is a systems programming language", true, "", false))

	pyID, err := s.InsertFile("/tmp/python.txt", "python.txt", "txt", 1, now, now, "", "/tmp")
	require.NoError(t, err)
	require.NoError(t, s.UpsertFileContent(pyID, "Python is a high-level programming language", true, "", false))

	rustResults, err := s.SearchFilesFTS("rust", 10)
	require.NoError(t, err)
	require.Len(t, rustResults, 1)
	require.Equal(t, rustID, rustResults[0].FileID)

	progResults, err := s.SearchFilesFTS("programming", 10)
	require.NoError(t, err)
	require.Len(t, progResults, 2)
}

func TestMarkFileDeleted_HidesFromSearchAndList(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	id, err := s.InsertFile("/tmp/gone.txt", "gone.txt", "txt", 1, now, now, "", "/tmp")
	require.NoError(t, err)
	require.NoError(t, s.UpsertFileContent(id, "soon deleted", true, "", false))

	require.NoError(t, s.MarkFileDeleted(id))

	results, err := s.SearchFilesFTS("deleted", 10)
	require.NoError(t, err)
	require.Len(t, results, 0)

	files, err := s.ListFiles(100, 0)
	require.NoError(t, err)
	require.Len(t, files, 0)
}

func TestGetDBStats_MatchesRowCounts(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()

	id1, err := s.InsertFile("/tmp/a.txt", "a.txt", "txt", 10, now, now, "", "/tmp")
	require.NoError(t, err)
	_, err = s.InsertFile("/tmp/b.txt", "b.txt", "txt", 20, now, now, "", "/tmp")
	require.NoError(t, err)
	require.NoError(t, s.UpsertFileContent(id1, "content", true, "", false))

	stats, err := s.GetDBStats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalFiles)
	require.Equal(t, 1, stats.IndexedFiles)
	require.Equal(t, int64(30), stats.TotalSizeBytes)
}

func TestUpsertEmbedding_RoundTripAndUnitNorm(t *testing.T) {
	s := openTestStore(t)
	now := time.Now().UTC()
	id, err := s.InsertFile("/tmp/e.txt", "e.txt", "txt", 1, now, now, "", "/tmp")
	require.NoError(t, err)

	vec := make([]float32, 384)
	vec[0] = 1.0 // already unit norm

	require.NoError(t, s.UpsertEmbedding(id, vec, "all-MiniLM-L6-v2"))

	got, err := s.GetEmbedding(id)
	require.NoError(t, err)
	require.Len(t, got.Vector, 384)
	require.Equal(t, "all-MiniLM-L6-v2", got.ModelVersion)

	all, err := s.GetAllEmbeddings()
	require.NoError(t, err)
	require.Len(t, all, 1)

	count, err := s.CountEmbeddings()
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
