// Package pipeline coordinates a full indexing run: scanning roots,
// extracting text, and writing results to storage, while publishing
// progress events and honoring cooperative cancellation.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
	"github.com/Boswecw/cortex-local/internal/extract"
	"github.com/Boswecw/cortex-local/internal/scanner"
	"github.com/Boswecw/cortex-local/internal/storage"
	watcher "github.com/Boswecw/cortex-local/internal/watch"
)

// progressEveryNth is how often a progress event is emitted between the
// mandatory first and last job of a run.
const progressEveryNth = 10

// Pipeline coordinates scan -> extract -> store runs over one or more root
// directories. A single instance must not run two overlapping indexing runs;
// Start rejects a second call while one is active.
type Pipeline struct {
	store   *storage.Store
	scanner *scanner.Scanner

	mu              sync.RWMutex
	active          bool
	stopRequested   bool
	progress        Status
	events          chan Event
	eventsOnce      sync.Once
}

// New builds a Pipeline over the given store and scanner.
func New(store *storage.Store, sc *scanner.Scanner) *Pipeline {
	return &Pipeline{
		store:   store,
		scanner: sc,
	}
}

// IsActive reports whether a run is currently in progress.
func (p *Pipeline) IsActive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// Status returns a snapshot of the current (or most recent) run.
func (p *Pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	status := p.progress
	status.Errors = append([]string(nil), p.progress.Errors...)
	return status
}

// Stop requests cancellation of the active run. It is a no-op error if no
// run is active.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return cortexerr.NewInternalf("no indexing run is active")
	}
	p.stopRequested = true
	return nil
}

// Events returns the channel events are published on for this Pipeline
// instance. Safe to call before or after Start; the channel is created
// lazily and reused across runs.
func (p *Pipeline) Events() <-chan Event {
	p.eventsOnce.Do(func() {
		p.events = make(chan Event, 64)
	})
	return p.events
}

// Start runs a full indexing pass over roots: Scanning each root in turn,
// then Extracting jobs across all roots in priority order, then Draining
// in-flight work before reaching a terminal state. It blocks until the run
// reaches Completed, Stopped, or Failed.
func (p *Pipeline) Start(ctx context.Context, roots []string) (*CompleteEvent, error) {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return nil, cortexerr.NewIndexingInProgress()
	}
	p.active = true
	p.stopRequested = false
	p.progress = Status{IsActive: true}
	p.mu.Unlock()
	p.eventsOnce.Do(func() {
		p.events = make(chan Event, 64)
	})

	start := time.Now()
	var allErrors []string

	defer func() {
		p.mu.Lock()
		p.active = false
		p.progress.IsActive = false
		p.mu.Unlock()
	}()

	var jobs []watcher.IndexJob
	for _, root := range roots {
		rootJobs, scanProgress, err := p.scanner.ScanDirectory(root)
		if err != nil {
			allErrors = append(allErrors, fmt.Sprintf("scan %s: %v", root, err))
			continue
		}
		allErrors = append(allErrors, scanProgress.Errors...)
		jobs = append(jobs, rootJobs...)
	}
	jobs = mergeByPriority(jobs)

	p.mu.Lock()
	p.progress.Total = len(jobs)
	p.mu.Unlock()

	if p.checkStop() {
		complete := p.finish(StateStopped, 0, len(jobs), allErrors, start)
		return complete, nil
	}

	indexed, jobErrors, stopped := p.extractAll(ctx, jobs)
	allErrors = append(allErrors, jobErrors...)

	state := StateCompleted
	if stopped {
		state = StateStopped
	}

	complete := p.finish(state, indexed, len(jobs), allErrors, start)
	return complete, nil
}

func (p *Pipeline) checkStop() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stopRequested
}

// extractAll retires jobs one at a time, strictly in dispatch order
// (already sorted per root by the Scanner; merge preserves that ordering
// across roots): check cancellation, extract, then within a short critical
// section on the store writer insert/update the File row and upsert its
// content, before moving to the next job. This mirrors
// run_indexing_pipeline's single-threaded per-job loop so retirement order
// — and therefore progress-event order — always matches dispatch order.
func (p *Pipeline) extractAll(ctx context.Context, jobs []watcher.IndexJob) (indexed int, errs []string, stopped bool) {
	for i, job := range jobs {
		if p.checkStop() {
			stopped = true
			break
		}
		select {
		case <-ctx.Done():
			stopped = true
			return indexed, errs, stopped
		default:
		}

		p.reportCurrent(job.Path)

		content, err := extract.Extract(job.Path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", job.Path, err))
			p.publish(Event{Error: &ErrorEvent{Path: job.Path, Err: err}})
			continue
		}

		if werr := p.storeJob(job, content); werr != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", job.Path, werr))
			p.publish(Event{Error: &ErrorEvent{Path: job.Path, Err: werr}})
			continue
		}

		indexed++
		if indexed == 1 || i == len(jobs)-1 || indexed%progressEveryNth == 0 {
			p.emitProgress(job.Path, indexed)
		}
	}

	return indexed, errs, stopped
}

// storeJob performs the short critical section the spec requires per job:
// insert_file (or update_file if the path is already known) followed by
// upsert_file_content.
func (p *Pipeline) storeJob(job watcher.IndexJob, content extract.Content) error {
	hash := hashFile(job.Path)

	existing, err := p.store.GetFileByPath(job.Path)
	var fileID int64
	if err != nil && cortexerr.Is(err, cortexerr.KindFileNotFound) {
		info, statErr := os.Stat(job.Path)
		createdAt := job.ModifiedAt
		if statErr == nil {
			if sys := info.ModTime(); !sys.IsZero() {
				createdAt = sys
			}
		}
		fileID, err = p.store.InsertFile(job.Path, baseName(job.Path), extOf(job.Path), job.Size, createdAt, job.ModifiedAt, hash, "")
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	} else {
		fileID = existing.ID
		if err := p.store.UpdateFile(fileID, job.Size, job.ModifiedAt, hash); err != nil {
			return err
		}
	}

	return p.store.UpsertFileContent(fileID, content.Text, true, content.Summary, content.HasSummary)
}

func (p *Pipeline) reportCurrent(path string) {
	p.mu.Lock()
	p.progress.CurrentPath = path
	p.mu.Unlock()
}

func (p *Pipeline) emitProgress(currentPath string, indexed int) {
	p.mu.Lock()
	p.progress.Indexed = indexed
	total := p.progress.Total
	percent := 0.0
	if total > 0 {
		percent = float64(indexed) / float64(total) * 100
	}
	p.progress.Percent = percent
	p.mu.Unlock()

	p.publish(Event{Progress: &ProgressEvent{
		Total:       total,
		Indexed:     indexed,
		CurrentPath: currentPath,
		Percentage:  percent,
	}})
}

func (p *Pipeline) finish(state State, indexed, total int, errs []string, start time.Time) *CompleteEvent {
	p.mu.Lock()
	p.progress.Indexed = indexed
	p.progress.Total = total
	p.progress.Errors = errs
	if total > 0 {
		p.progress.Percent = float64(indexed) / float64(total) * 100
	}
	p.mu.Unlock()

	complete := &CompleteEvent{
		State:    state,
		Indexed:  indexed,
		Total:    total,
		Errors:   errs,
		Duration: time.Since(start),
	}
	p.publish(Event{Complete: complete})
	return complete
}

func (p *Pipeline) publish(evt Event) {
	if p.events == nil {
		return
	}
	select {
	case p.events <- evt:
	default:
		// Best-effort delivery: a full events channel means no consumer is
		// draining it, so the new event is dropped rather than blocking the
		// run (the watcher, by contrast, drops its oldest queued job).
	}
}

// mergeByPriority merges per-root job slices (each already sorted by
// priority DESC, modified DESC) into one ordering that preserves that
// guarantee across roots.
func mergeByPriority(jobs []watcher.IndexJob) []watcher.IndexJob {
	out := append([]watcher.IndexJob(nil), jobs...)
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && less(out[j], out[j-1]) {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}

func less(a, b watcher.IndexJob) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.ModifiedAt.After(b.ModifiedAt)
}

func hashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func extOf(path string) string {
	base := baseName(path)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return toLower(base[i+1:])
		}
	}
	return ""
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
