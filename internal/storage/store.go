// Package storage is the transactional persistence layer: file metadata,
// extracted content, a full-text index, and a vector store, all backed by a
// single SQLite database.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

// writerPragmas are applied once, on the writer connection: WAL journaling
// so readers never block on a write, NORMAL synchronous (durable enough
// without fsyncing every write), a large page cache, and memory-mapped
// reads.
var writerPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA cache_size = -64000",
	"PRAGMA mmap_size = 268435456",
}

// readerPragmas are reapplied on every cloned read-only connection. They
// exclude journal_mode, which requires write access to the database file —
// a reader inherits whatever journal mode the writer already set.
var readerPragmas = []string{
	"PRAGMA synchronous = NORMAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA cache_size = -64000",
	"PRAGMA mmap_size = 268435456",
}

// Store is the single-writer, multi-reader handle onto the SQLite database.
// Writes must go through the shared writer connection; reads may use either
// the writer or a fresh reader snapshot obtained via OpenReader.
type Store struct {
	dbPath     string
	writer     *sql.DB
	dimensions int
}

// Open creates (if needed) and opens the database at dbPath, applying the
// schema and durability pragmas. embeddingDimensions sizes the vector index;
// it is only consulted on first creation.
func Open(dbPath string, embeddingDimensions int) (*Store, error) {
	InitVectorExtension()

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("open %s: %w", dbPath, err))
	}
	db.SetMaxOpenConns(1) // single writer: serialize all writer-connection use

	if err := applyPragmas(db, writerPragmas); err != nil {
		db.Close()
		return nil, err
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, cortexerr.NewDatabaseError(err)
	}
	if version == "0" {
		if err := CreateSchema(db, embeddingDimensions); err != nil {
			db.Close()
			return nil, cortexerr.NewDatabaseError(err)
		}
	}

	return &Store{dbPath: dbPath, writer: db, dimensions: embeddingDimensions}, nil
}

func applyPragmas(db *sql.DB, pragmas []string) error {
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return cortexerr.NewDatabaseError(fmt.Errorf("apply pragma %q: %w", pragma, err))
		}
	}
	return nil
}

// OpenReader returns a fresh read-only connection cloned from the writer's
// path. Callers that only read (Query, search, export) should prefer this
// over the shared writer so long-running reads never block a write.
func (s *Store) OpenReader() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("open reader: %w", err))
	}
	if err := applyPragmas(db, readerPragmas); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the writer connection. Readers opened via OpenReader are the
// caller's responsibility to close.
func (s *Store) Close() error {
	return s.writer.Close()
}
