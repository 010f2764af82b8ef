// Package export re-chunks stored content into two portable output shapes:
// a human-browsable context bundle and a single portable JSON package for
// downstream AI tooling.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

// ValidatePath validates an export output path before any file is written:
// empty/whitespace, ".." traversal, absolute paths escaping the home/temp
// directories, and relative paths escaping the current working directory
// are all rejected. The returned path is the fully resolved destination.
func ValidatePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", cortexerr.NewInvalidPath(path, "export path cannot be empty")
	}

	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if component == ".." {
			return "", cortexerr.NewInvalidPath(path, "path traversal is not allowed (..)")
		}
	}

	isAbsolute := filepath.IsAbs(path)
	if isAbsolute {
		if err := validateAbsolutePath(path); err != nil {
			return "", err
		}
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return "", cortexerr.NewInternal(err)
	}

	fullPath := path
	if !isAbsolute {
		fullPath = filepath.Join(baseDir, path)
	}

	parent := filepath.Dir(fullPath)
	if info, statErr := os.Stat(parent); statErr == nil && info.IsDir() {
		canonical, err := filepath.EvalSymlinks(parent)
		if err != nil {
			return "", cortexerr.NewInternal(err)
		}
		if !isAbsolute {
			canonicalBase, err := filepath.EvalSymlinks(baseDir)
			if err != nil {
				return "", cortexerr.NewInternal(err)
			}
			if !withinDir(canonical, canonicalBase) {
				return "", cortexerr.NewInvalidPath(path, "path resolves outside of working directory")
			}
		}
		return filepath.Join(canonical, filepath.Base(fullPath)), nil
	}

	return fullPath, nil
}

// validateAbsolutePath requires an absolute path to live under the user's
// home directory or the system temp directory.
func validateAbsolutePath(path string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return cortexerr.NewInternal(err)
	}
	temp := os.TempDir()

	if withinDir(path, home) || withinDir(path, temp) {
		return nil
	}
	return cortexerr.NewInvalidPath(path, "absolute paths must be within the home directory ("+home+") or temp directory ("+temp+")")
}

func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}
