package storage

import "time"

// File is a record of a known file on disk.
type File struct {
	ID           int64
	Path         string // absolute, unique among non-deleted files
	Filename     string
	FileType     string // lowercased extension, no leading dot
	Size         int64
	Hash         string
	RootPath     string
	CreatedAt    time.Time
	ModifiedAt   time.Time
	LastIndexed  time.Time
	IsDeleted    bool
}

// FileContent is the extracted text for a File, one-to-one.
type FileContent struct {
	FileID      int64
	TextContent string
	HasText     bool // distinguishes empty string from NULL
	WordCount   int
	Summary     string
	HasSummary  bool
}

// Embedding is a fixed-dimension vector associated with a File.
type Embedding struct {
	FileID       int64
	Vector       []float32
	ModelVersion string
}

// SearchResult is one row returned from a lexical search.
type SearchResult struct {
	FileID   int64
	Path     string
	Filename string
	Snippet  string
	Score    float64
}

// DBStats summarizes the store's current contents.
type DBStats struct {
	TotalFiles     int
	IndexedFiles   int
	TotalSizeBytes int64
}

// SearchFilters narrows a filtered (non-FTS-only) lexical search.
// Zero values mean "no constraint" for that field.
type SearchFilters struct {
	FileType string
	MinSize  int64
	MaxSize  int64
	DateFrom time.Time
	DateTo   time.Time
}

func (f *SearchFilters) isEmpty() bool {
	if f == nil {
		return true
	}
	return f.FileType == "" && f.MinSize == 0 && f.MaxSize == 0 &&
		f.DateFrom.IsZero() && f.DateTo.IsZero()
}
