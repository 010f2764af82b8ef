// Package watcher subscribes to filesystem notifications and turns file
// create/modify events into index jobs for the pipeline.
package watcher

import (
	"context"
	"time"
)

// Priority ranks an IndexJob for the order the pipeline should retire it in.
// Higher values are retired first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityImmediate
)

// PriorityFromSize derives a priority from file size: small and recently
// touched files are cheap to extract and surface sooner.
func PriorityFromSize(size int64) Priority {
	switch {
	case size < 1_000_000:
		return PriorityImmediate
	case size < 10_000_000:
		return PriorityHigh
	case size < 100_000_000:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// IndexJob is an ephemeral unit of work describing a file that needs
// (re-)extraction and storage.
type IndexJob struct {
	Path       string
	Size       int64
	ModifiedAt time.Time
	Priority   Priority
}

// NewIndexJob builds an IndexJob with a priority derived from size.
func NewIndexJob(path string, size int64, modifiedAt time.Time) IndexJob {
	return IndexJob{
		Path:       path,
		Size:       size,
		ModifiedAt: modifiedAt,
		Priority:   PriorityFromSize(size),
	}
}

// Watcher watches a set of root directories and emits IndexJobs for files
// that are created or modified.
type Watcher interface {
	// Start begins watching and returns a channel of jobs. The channel has
	// capacity 1000; under backpressure the oldest unread job is dropped to
	// make room for the newest, and a warning is logged.
	Start(ctx context.Context) (<-chan IndexJob, error)

	// Stop halts watching and closes the job channel. Idempotent.
	Stop() error
}

// jobChannelCapacity is the bounded channel size behind every Watcher
// implementation's job delivery.
const jobChannelCapacity = 1000
