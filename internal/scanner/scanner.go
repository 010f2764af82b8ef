// Package scanner performs depth-first directory traversal to discover files
// eligible for indexing, grounded on the teacher's glob-pattern file
// discovery but scoped to a fixed ignore/extension policy plus size and
// symlink limits.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	watcher "github.com/Boswecw/cortex-local/internal/watch"
)

var fixedIgnoreDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	".git":         true,
	".svn":         true,
}

// ScanProgress reports the outcome of a directory scan.
type ScanProgress struct {
	TotalFiles int
	Errors     []string
}

// Scanner discovers index-eligible files under one or more roots.
type Scanner struct {
	maxFileSize    int64
	supportedExts  map[string]bool
	followSymlinks bool
	ignoreGlobs    []glob.Glob
}

// New builds a Scanner from configured limits. extraIgnorePatterns are glob
// patterns (e.g. "*.generated.go") matched against each entry's own name
// (directory names carry a trailing "/"), in addition to the fixed ignored
// directory names.
func New(maxFileSize int64, supportedExtensions []string, followSymlinks bool, extraIgnorePatterns []string) (*Scanner, error) {
	exts := make(map[string]bool, len(supportedExtensions))
	for _, e := range supportedExtensions {
		exts[e] = true
	}

	var globs []glob.Glob
	for _, pattern := range extraIgnorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}

	return &Scanner{
		maxFileSize:    maxFileSize,
		supportedExts:  exts,
		followSymlinks: followSymlinks,
		ignoreGlobs:    globs,
	}, nil
}

// ScanDirectory performs a two-pass depth-first traversal of root: the first
// pass counts eligible files to populate ScanProgress.TotalFiles, the second
// collects jobs and assigns priority. The result is sorted by
// (priority DESC, modified DESC). Per-subtree walk errors are appended to
// ScanProgress.Errors and traversal continues.
func (s *Scanner) ScanDirectory(root string) ([]watcher.IndexJob, ScanProgress, error) {
	var progress ScanProgress

	total, err := s.walk(root, &progress, nil)
	if err != nil {
		return nil, progress, err
	}
	progress.TotalFiles = total

	var jobs []watcher.IndexJob
	if _, err := s.walk(root, &progress, &jobs); err != nil {
		return nil, progress, err
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority > jobs[j].Priority
		}
		return jobs[i].ModifiedAt.After(jobs[j].ModifiedAt)
	})

	return jobs, progress, nil
}

// walk traverses root depth-first. When jobs is non-nil it appends an
// IndexJob per eligible file (second pass); otherwise it only counts (first
// pass). Either way it returns the number of eligible files under root.
func (s *Scanner) walk(root string, progress *ScanProgress, jobs *[]watcher.IndexJob) (int, error) {
	count := 0

	entries, err := os.ReadDir(root)
	if err != nil {
		if jobs != nil {
			progress.Errors = append(progress.Errors, fmt.Sprintf("read %s: %v", root, err))
		}
		return count, nil
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		relFromRoot := entry.Name()

		if entry.Name()[0] == '.' {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			if jobs != nil {
				progress.Errors = append(progress.Errors, fmt.Sprintf("stat %s: %v", path, err))
			}
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !s.followSymlinks {
				continue
			}
			resolved, err := os.Stat(path)
			if err != nil {
				if jobs != nil {
					progress.Errors = append(progress.Errors, fmt.Sprintf("resolve symlink %s: %v", path, err))
				}
				continue
			}
			info = resolved
		}

		if info.IsDir() {
			if fixedIgnoreDirs[entry.Name()] || s.matchesIgnoreGlob(relFromRoot+"/") {
				continue
			}
			sub, err := s.walk(path, progress, jobs)
			if err != nil {
				return count, err
			}
			count += sub
			continue
		}

		if s.matchesIgnoreGlob(relFromRoot) {
			continue
		}

		ext := extensionOf(entry.Name())
		if !s.supportedExts[ext] {
			continue
		}

		if info.Size() > s.maxFileSize {
			continue
		}

		count++
		if jobs != nil {
			*jobs = append(*jobs, watcher.NewIndexJob(path, info.Size(), info.ModTime()))
		}
	}

	return count, nil
}

func (s *Scanner) matchesIgnoreGlob(relPath string) bool {
	for _, g := range s.ignoreGlobs {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

func extensionOf(name string) string {
	ext := filepath.Ext(name)
	if len(ext) == 0 {
		return ""
	}
	return toLowerASCII(ext[1:])
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
