package command

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Boswecw/cortex-local/internal/embed"
	"github.com/Boswecw/cortex-local/internal/export"
	"github.com/Boswecw/cortex-local/internal/pipeline"
	"github.com/Boswecw/cortex-local/internal/query"
	"github.com/Boswecw/cortex-local/internal/scanner"
	"github.com/Boswecw/cortex-local/internal/storage"
)

// Test plan:
// - SemanticSearch and FindSimilarFiles apply their documented defaults when
//   limit/threshold are left zero
// - StartIndexing rejects a second call while a run is active
// - GenerateAllEmbeddings defaults batch size when zero

func newTestSurface(t *testing.T) *Surface {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	store, err := storage.Open(dbPath, 384)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sc, err := scanner.New(10<<20, []string{"txt"}, false, nil)
	require.NoError(t, err)

	mock := embed.NewMockProvider()
	p := pipeline.New(store, sc)
	q := query.New(store, mock)
	e := export.New(store)

	return New(p, q, e, "mock-v1")
}

func TestSemanticSearch_AppliesDefaults(t *testing.T) {
	s := newTestSurface(t)
	_, err := s.SemanticSearch(context.Background(), "anything", 0, 0)
	require.NoError(t, err)
}

func TestStartIndexing_RejectsSecondCallWhileActive(t *testing.T) {
	s := newTestSurface(t)
	root := t.TempDir()

	require.NoError(t, s.StartIndexing(context.Background(), []string{root}))
	time.Sleep(5 * time.Millisecond)

	if s.Pipeline.IsActive() {
		require.Error(t, s.StartIndexing(context.Background(), []string{root}))
	}

	for s.Pipeline.IsActive() {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGenerateAllEmbeddings_DefaultsBatchSize(t *testing.T) {
	s := newTestSurface(t)
	n, err := s.GenerateAllEmbeddings(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
