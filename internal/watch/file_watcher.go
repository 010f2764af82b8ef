package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// fileWatcher implements Watcher using fsnotify, recursively watching every
// directory under the given roots and debouncing bursts of events before
// emitting IndexJobs.
type fileWatcher struct {
	watcher      *fsnotify.Watcher
	roots        []string
	debounceTime time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	pausedMu sync.RWMutex
	paused   bool

	accumulatedMu sync.Mutex
	accumulated   map[string]bool

	timerMu       sync.Mutex
	debounceTimer *time.Timer

	stopOnce sync.Once
	doneCh   chan struct{}
	jobs     chan IndexJob

	maxDirectories  int
	maxDepth        int
	watchedDirCount int
	countMu         sync.Mutex
}

// NewFileWatcher creates a new file watcher for the given root directories.
func NewFileWatcher(roots []string) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:        watcher,
		roots:          roots,
		debounceTime:   500 * time.Millisecond,
		accumulated:    make(map[string]bool),
		doneCh:         make(chan struct{}),
		jobs:           make(chan IndexJob, jobChannelCapacity),
		maxDirectories: 1000,
		maxDepth:       10,
	}

	for _, root := range roots {
		if err := fw.addDirectoriesRecursively(root, 0); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start begins watching for file changes and returns the job channel.
func (fw *fileWatcher) Start(ctx context.Context) (<-chan IndexJob, error) {
	fw.ctx, fw.cancel = context.WithCancel(ctx)
	go fw.watch()
	return fw.jobs, nil
}

// Stop stops the file watcher and closes the job channel.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
		close(fw.jobs)
	})
	return err
}

// Pause stops emitting jobs but continues accumulating changed paths.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes emitting jobs. Paths accumulated while paused are emitted
// immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.flushAccumulated()
	}
}

func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	reindexCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name, 0); err != nil {
						log.Printf("watcher: failed to watch new directory %s: %v", event.Name, err)
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(reindexCh)

		case <-reindexCh:
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: error: %v", err)
		}
	}
}

func (fw *fileWatcher) handleDebounceExpired() {
	fw.pausedMu.RLock()
	paused := fw.paused
	fw.pausedMu.RUnlock()

	if paused {
		return
	}

	fw.flushAccumulated()
}

// flushAccumulated resolves each accumulated path to an IndexJob and
// delivers it to the job channel, dropping the oldest undelivered job if the
// channel is full.
func (fw *fileWatcher) flushAccumulated() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	paths := make([]string, 0, len(fw.accumulated))
	for p := range fw.accumulated {
		paths = append(paths, p)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		fw.deliver(NewIndexJob(path, info.Size(), info.ModTime()))
	}
}

// deliver sends a job to the channel, dropping the oldest queued job and
// logging a warning if the channel is full.
func (fw *fileWatcher) deliver(job IndexJob) {
	select {
	case fw.jobs <- job:
		return
	default:
	}

	select {
	case <-fw.jobs:
		log.Printf("watcher: job channel full, dropped oldest pending job")
	default:
	}

	select {
	case fw.jobs <- job:
	default:
		log.Printf("watcher: job channel still full after drop, discarding job for %s", job.Path)
	}
}

func (fw *fileWatcher) resetDebounceTimer(reindexCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		if !fw.debounceTimer.Stop() {
			select {
			case <-fw.debounceTimer.C:
			default:
			}
		}
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case reindexCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent reports whether an fsnotify event names a regular file
// whose creation or modification should produce a job. Events that cannot be
// resolved to a file are discarded.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return false
	}
	return true
}

// addDirectoriesRecursively adds every directory under rootPath to the
// watcher, skipping VCS/dependency/cortex-internal directories, up to
// maxDepth and maxDirectories.
func (fw *fileWatcher) addDirectoriesRecursively(rootPath string, depth int) error {
	if depth > fw.maxDepth {
		return fmt.Errorf("max depth %d exceeded at path %s", fw.maxDepth, rootPath)
	}

	dirName := filepath.Base(rootPath)
	if isIgnoredWatchDir(dirName) {
		return nil
	}

	fw.countMu.Lock()
	if fw.watchedDirCount >= fw.maxDirectories {
		count := fw.watchedDirCount
		fw.countMu.Unlock()
		return fmt.Errorf("directory limit reached: %d directories already watched (max: %d)", count, fw.maxDirectories)
	}
	fw.countMu.Unlock()

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return err
	}

	fw.countMu.Lock()
	fw.watchedDirCount++
	currentCount := fw.watchedDirCount
	fw.countMu.Unlock()

	if err := fw.watcher.Add(rootPath); err != nil {
		fw.countMu.Lock()
		fw.watchedDirCount--
		fw.countMu.Unlock()
		return fmt.Errorf("failed to watch directory %s: %w", rootPath, err)
	}

	if currentCount >= fw.maxDirectories*9/10 {
		log.Printf("watcher: watching %d directories (approaching limit of %d)", currentCount, fw.maxDirectories)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if isIgnoredWatchDir(entry.Name()) {
			continue
		}
		subPath := filepath.Join(rootPath, entry.Name())
		if err := fw.addDirectoriesRecursively(subPath, depth+1); err != nil {
			log.Printf("watcher: %v", err)
		}
	}

	return nil
}

func isIgnoredWatchDir(name string) bool {
	switch name {
	case ".git", ".svn", "node_modules", "target", "dist", "build", ".cortex":
		return true
	default:
		return len(name) > 0 && name[0] == '.'
	}
}
