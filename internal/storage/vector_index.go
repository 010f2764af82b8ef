package storage

import (
	"database/sql"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// InitVectorExtension registers the sqlite-vec extension with the driver.
// Must be called once, before opening any database connection.
func InitVectorExtension() {
	sqlite_vec.Auto()
}

// CreateVectorIndex creates the vec0 virtual table holding one embedding per
// file. Only stores the vector; join with files for metadata.
func CreateVectorIndex(db *sql.DB, dimensions int) error {
	createSQL := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS file_embeddings USING vec0(
			file_id INTEGER PRIMARY KEY,
			embedding float[%d]
		)
	`, dimensions)

	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}
	return nil
}

// upsertEmbedding replaces the prior vector for a file atomically (vec0
// virtual tables don't support INSERT OR REPLACE, so delete then insert).
// model_version is tracked in a companion row in embedding_versions.
func upsertEmbedding(tx *sql.Tx, fileID int64, vector []float32, modelVersion string) error {
	if _, err := tx.Exec(`DELETE FROM file_embeddings WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete stale embedding for file %d: %w", fileID, err)
	}

	embBytes, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return fmt.Errorf("failed to serialize embedding for file %d: %w", fileID, err)
	}
	if _, err := tx.Exec(`INSERT INTO file_embeddings(file_id, embedding) VALUES (?, ?)`, fileID, embBytes); err != nil {
		return fmt.Errorf("failed to insert embedding for file %d: %w", fileID, err)
	}

	if _, err := tx.Exec(`
		INSERT INTO embedding_versions(file_id, model_version) VALUES (?, ?)
		ON CONFLICT(file_id) DO UPDATE SET model_version = excluded.model_version
	`, fileID, modelVersion); err != nil {
		return fmt.Errorf("failed to record embedding version for file %d: %w", fileID, err)
	}
	return nil
}

func deleteEmbedding(tx *sql.Tx, fileID int64) error {
	if _, err := tx.Exec(`DELETE FROM file_embeddings WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete embedding for file %d: %w", fileID, err)
	}
	if _, err := tx.Exec(`DELETE FROM embedding_versions WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("failed to delete embedding version for file %d: %w", fileID, err)
	}
	return nil
}

func getEmbedding(db *sql.DB, fileID int64) (*Embedding, error) {
	var embBytes []byte
	var modelVersion string
	err := db.QueryRow(`
		SELECT fe.embedding, ev.model_version
		FROM file_embeddings fe
		LEFT JOIN embedding_versions ev ON ev.file_id = fe.file_id
		WHERE fe.file_id = ?
	`, fileID).Scan(&embBytes, &modelVersion)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query embedding for file %d: %w", fileID, err)
	}

	vec, err := DeserializeEmbedding(embBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize embedding for file %d: %w", fileID, err)
	}
	return &Embedding{FileID: fileID, Vector: vec, ModelVersion: modelVersion}, nil
}

func getAllEmbeddings(db *sql.DB) ([]Embedding, error) {
	rows, err := db.Query(`
		SELECT fe.file_id, fe.embedding, COALESCE(ev.model_version, '')
		FROM file_embeddings fe
		LEFT JOIN embedding_versions ev ON ev.file_id = fe.file_id
		INNER JOIN files f ON f.id = fe.file_id
		WHERE f.is_deleted = 0
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var out []Embedding
	for rows.Next() {
		var e Embedding
		var embBytes []byte
		if err := rows.Scan(&e.FileID, &embBytes, &e.ModelVersion); err != nil {
			return nil, fmt.Errorf("failed to scan embedding row: %w", err)
		}
		vec, err := DeserializeEmbedding(embBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize embedding for file %d: %w", e.FileID, err)
		}
		e.Vector = vec
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating embeddings: %w", err)
	}
	return out, nil
}

func countEmbeddings(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM file_embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return count, nil
}

func getFilesWithoutEmbeddings(db *sql.DB, limit int) ([]File, error) {
	rows, err := db.Query(`
		SELECT f.id, f.path, f.filename, f.file_type, f.size, f.hash, f.root_path,
		       f.created_at, f.modified_at, f.last_indexed, f.is_deleted
		FROM files f
		LEFT JOIN file_embeddings fe ON fe.file_id = f.id
		WHERE fe.file_id IS NULL AND f.is_deleted = 0
		ORDER BY f.modified_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query files without embeddings: %w", err)
	}
	defer rows.Close()
	return scanFiles(rows)
}

const createEmbeddingVersionsTable = `
CREATE TABLE IF NOT EXISTS embedding_versions (
    file_id       INTEGER PRIMARY KEY,
    model_version TEXT NOT NULL,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
)
`
