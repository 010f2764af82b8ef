package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Boswecw/cortex-local/internal/storage"
)

// Service builds both export shapes from a Store's current contents.
type Service struct {
	store *storage.Store
}

// New builds an export Service over store.
func New(store *storage.Store) *Service {
	return &Service{store: store}
}

// writeAtomic writes data to path via a temp-file-then-rename, so a reader
// never observes a partially written export file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp export file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename export file into place: %w", err)
	}
	return nil
}

// writeFileAtomic writes a named file under dir atomically, returning the
// final path.
func writeFileAtomic(dir, filename, content string) (string, error) {
	finalPath := filepath.Join(dir, filename)
	if err := writeAtomic(finalPath, []byte(content)); err != nil {
		return "", err
	}
	return finalPath, nil
}
