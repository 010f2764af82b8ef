package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Boswecw/cortex-local/internal/scanner"
	"github.com/Boswecw/cortex-local/internal/storage"
	watcher "github.com/Boswecw/cortex-local/internal/watch"
)

// Test plan:
// - Start over a root with supported files indexes every one and reaches
//   Completed, always emitting exactly one CompleteEvent
// - a second overlapping Start is rejected with IndexingInProgress
// - mergeByPriority preserves (priority DESC, modified DESC) across roots

func newTestPipeline(t *testing.T) (*Pipeline, *storage.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "db.sqlite")
	store, err := storage.Open(dbPath, 384)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sc, err := scanner.New(10<<20, []string{"txt", "md"}, false, nil)
	require.NoError(t, err)

	return New(store, sc), store
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestPipeline_StartIndexesAllFilesAndCompletes(t *testing.T) {
	p, store := newTestPipeline(t)
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello world")
	writeFile(t, root, "b.md", "# heading\n\nbody text")

	complete, err := p.Start(context.Background(), []string{root})
	require.NoError(t, err)
	require.Equal(t, StateCompleted, complete.State)
	require.Equal(t, 2, complete.Indexed)
	require.Equal(t, 2, complete.Total)
	require.Empty(t, complete.Errors)

	stats, err := store.GetDBStats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.IndexedFiles)
}

func TestPipeline_RejectsOverlappingStart(t *testing.T) {
	p, _ := newTestPipeline(t)
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, root, fmt.Sprintf("f%02d.txt", i), "content")
	}

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = p.Start(context.Background(), []string{root})
	}()
	<-started
	time.Sleep(5 * time.Millisecond)

	if p.IsActive() {
		_, err := p.Start(context.Background(), []string{root})
		require.Error(t, err)
	}
	require.NoError(t, p.Stop())

	// Drain until the background run reaches a terminal state.
	for p.IsActive() {
		time.Sleep(5 * time.Millisecond)
	}
}

// TestExtractAll_RetiresStrictlyInDispatchOrder guards the ordering
// guarantee: jobs retire (store write, then progress event) in the exact
// order they were dispatched, never reordered by content-dependent
// extraction speed. File ids are assigned in insertion order by
// InsertFile's AUTOINCREMENT column, so the id order observed after the
// run is a direct witness of store-write order.
func TestExtractAll_RetiresStrictlyInDispatchOrder(t *testing.T) {
	p, store := newTestPipeline(t)
	root := t.TempDir()
	writeFile(t, root, "c.txt", "gamma content")
	writeFile(t, root, "a.txt", "alpha content")
	writeFile(t, root, "b.txt", "beta content")

	now := time.Now()
	dispatchOrder := []string{
		filepath.Join(root, "c.txt"),
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "b.txt"),
	}
	jobs := make([]watcher.IndexJob, len(dispatchOrder))
	for i, path := range dispatchOrder {
		// Priority/size are set independently of any real extraction cost;
		// dispatch order alone must determine retirement order.
		jobs[i] = watcher.IndexJob{Path: path, Size: 10, ModifiedAt: now, Priority: watcher.PriorityNormal}
	}

	indexed, errs, stopped := p.extractAll(context.Background(), jobs)
	require.Empty(t, errs)
	require.False(t, stopped)
	require.Equal(t, 3, indexed)

	var ids []int64
	for _, path := range dispatchOrder {
		f, err := store.GetFileByPath(path)
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	require.True(t, ids[0] < ids[1] && ids[1] < ids[2],
		"expected file ids to be assigned in dispatch order, got %v", ids)
}

func TestMergeByPriority_PreservesOrderAcrossRoots(t *testing.T) {
	now := time.Now()
	a := []watcher.IndexJob{
		watcher.NewIndexJob("/root-a/high.txt", 10, now),
		watcher.NewIndexJob("/root-a/low.txt", 10, now.Add(-time.Hour)),
	}
	b := []watcher.IndexJob{
		watcher.NewIndexJob("/root-b/mid.txt", 10, now.Add(-30*time.Minute)),
	}

	merged := mergeByPriority(append(append([]watcher.IndexJob{}, a...), b...))
	require.Len(t, merged, 3)
	for i := 1; i < len(merged); i++ {
		require.False(t, less(merged[i], merged[i-1]), "job %d out of order relative to %d", i, i-1)
	}
}
