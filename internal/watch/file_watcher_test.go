package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test plan:
// - priority_from_size matches the documented size bands
// - writing a file under a watched root eventually produces a matching IndexJob
// - Pause suppresses emission until Resume, which flushes accumulated paths
// - Stop closes the job channel

func TestPriorityFromSize(t *testing.T) {
	require.Equal(t, PriorityImmediate, PriorityFromSize(500_000))
	require.Equal(t, PriorityHigh, PriorityFromSize(5_000_000))
	require.Equal(t, PriorityNormal, PriorityFromSize(50_000_000))
	require.Equal(t, PriorityLow, PriorityFromSize(150_000_000))
}

func TestFileWatcher_EmitsJobOnWrite(t *testing.T) {
	root := t.TempDir()

	w, err := NewFileWatcher([]string{root})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs, err := w.Start(ctx)
	require.NoError(t, err)

	path := filepath.Join(root, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	select {
	case job := <-jobs:
		require.Equal(t, path, job.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for index job")
	}

	require.NoError(t, w.Stop())
}

func TestFileWatcher_PauseSuppressesUntilResume(t *testing.T) {
	root := t.TempDir()

	w, err := NewFileWatcher([]string{root})
	require.NoError(t, err)
	fw := w.(*fileWatcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs, err := w.Start(ctx)
	require.NoError(t, err)

	fw.Pause()

	path := filepath.Join(root, "paused.txt")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	select {
	case <-jobs:
		t.Fatal("job emitted while paused")
	case <-time.After(1 * time.Second):
	}

	fw.Resume()

	select {
	case job := <-jobs:
		require.Equal(t, path, job.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for job after resume")
	}

	require.NoError(t, w.Stop())
}

func TestFileWatcher_StopClosesJobChannel(t *testing.T) {
	root := t.TempDir()

	w, err := NewFileWatcher([]string{root})
	require.NoError(t, err)

	ctx := context.Background()
	jobs, err := w.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Stop())

	_, open := <-jobs
	require.False(t, open)
}
