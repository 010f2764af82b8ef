package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateSchema creates all tables, the FTS5 index, and the vector index.
// Uses a transaction for the core tables; FTS5/vec0 virtual tables and their
// triggers must be created outside a transaction.
//
// Safe to call against an existing database: every statement is idempotent.
func CreateSchema(db *sql.DB, embeddingDimensions int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"file_content", createFileContentTable},
		{"embedding_versions", createEmbeddingVersionsTable},
		{"cortex_metadata", createMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	if err := CreateFTSIndex(db); err != nil {
		return fmt.Errorf("failed to create FTS index: %w", err)
	}
	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("failed to create FTS triggers: %w", err)
	}
	if err := CreateVectorIndex(db, embeddingDimensions); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return bootstrapMetadata(db, embeddingDimensions)
}

func bootstrapMetadata(db *sql.DB, embeddingDimensions int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO cortex_metadata (key, value, updated_at) VALUES
			('schema_version', '1', ?),
			('embedding_dimensions', ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, now, fmt.Sprintf("%d", embeddingDimensions), now)
	if err != nil {
		return fmt.Errorf("failed to bootstrap cortex_metadata: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the current schema version, or "0" for a
// database that hasn't been initialized yet.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='cortex_metadata'`).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check cortex_metadata existence: %w", err)
	}
	if exists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow(`SELECT value FROM cortex_metadata WHERE key = 'schema_version'`).Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    path          TEXT NOT NULL,
    filename      TEXT NOT NULL,
    file_type     TEXT NOT NULL,
    size          INTEGER NOT NULL DEFAULT 0,
    hash          TEXT,
    root_path     TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    modified_at   TEXT NOT NULL,
    last_indexed  TEXT NOT NULL,
    is_deleted    INTEGER NOT NULL DEFAULT 0
)
`

const createFileContentTable = `
CREATE TABLE IF NOT EXISTS file_content (
    file_id      INTEGER PRIMARY KEY,
    text_content TEXT,
    word_count   INTEGER NOT NULL DEFAULT 0,
    summary      TEXT,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
)
`

const createMetadataTable = `
CREATE TABLE IF NOT EXISTS cortex_metadata (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_files_path ON files(path) WHERE is_deleted = 0`,
		`CREATE INDEX IF NOT EXISTS idx_files_modified_at ON files(modified_at)`,
		`CREATE INDEX IF NOT EXISTS idx_files_is_deleted ON files(is_deleted)`,
		`CREATE INDEX IF NOT EXISTS idx_files_file_type ON files(file_type)`,
	}
}
