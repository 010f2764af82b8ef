package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

const timeLayout = time.RFC3339

// InsertFile inserts a new File row. Fails with a DatabaseError wrapping a
// uniqueness violation if path is already present among non-deleted files.
func (s *Store) InsertFile(path, filename, fileType string, size int64, createdAt, modifiedAt time.Time, hash, rootPath string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.writer.Exec(`
		INSERT INTO files (path, filename, file_type, size, hash, root_path, created_at, modified_at, last_indexed, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, path, filename, fileType, size, hash, rootPath,
		createdAt.UTC().Format(timeLayout), modifiedAt.UTC().Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return 0, cortexerr.NewDatabaseError(fmt.Errorf("insert file %s: %w", path, err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, cortexerr.NewDatabaseError(fmt.Errorf("read inserted file id for %s: %w", path, err))
	}
	return id, nil
}

// UpdateFile updates size/modified/hash on re-index and always bumps
// last_indexed to now.
func (s *Store) UpdateFile(id int64, size int64, modifiedAt time.Time, hash string) error {
	now := time.Now().UTC()
	_, err := s.writer.Exec(`
		UPDATE files SET size = ?, modified_at = ?, hash = ?, last_indexed = ?
		WHERE id = ?
	`, size, modifiedAt.UTC().Format(timeLayout), hash, now.Format(timeLayout), id)
	if err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("update file %d: %w", id, err))
	}
	return nil
}

// UpsertFileContent recomputes word_count and replaces any prior row for
// file_id. The FTS triggers fire on the underlying insert/update.
func (s *Store) UpsertFileContent(fileID int64, text string, hasText bool, summary string, hasSummary bool) error {
	wordCount := 0
	if hasText {
		wordCount = len(strings.Fields(text))
	}

	var textArg, summaryArg sql.NullString
	if hasText {
		textArg = sql.NullString{String: text, Valid: true}
	}
	if hasSummary {
		summaryArg = sql.NullString{String: summary, Valid: true}
	}

	tx, err := s.writer.Begin()
	if err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("begin upsert_file_content tx for file %d: %w", fileID, err))
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO file_content (file_id, text_content, word_count, summary)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			text_content = excluded.text_content,
			word_count = excluded.word_count,
			summary = excluded.summary
	`, fileID, textArg, wordCount, summaryArg)
	if err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("upsert file_content for file %d: %w", fileID, err))
	}

	if err := tx.Commit(); err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("commit upsert_file_content for file %d: %w", fileID, err))
	}
	return nil
}

func (s *Store) GetFileByID(id int64) (*File, error) {
	row := s.writer.QueryRow(fileSelectColumns+` FROM files WHERE id = ?`, id)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, cortexerr.NewFileNotFound(fmt.Sprintf("file id %d", id))
	}
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("get file by id %d: %w", id, err))
	}
	return f, nil
}

func (s *Store) GetFileByPath(path string) (*File, error) {
	row := s.writer.QueryRow(fileSelectColumns+` FROM files WHERE path = ? AND is_deleted = 0`, path)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, cortexerr.NewFileNotFound(path)
	}
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("get file by path %s: %w", path, err))
	}
	return f, nil
}

// ListFiles returns non-deleted files, newest-modified first.
func (s *Store) ListFiles(limit, offset int) ([]File, error) {
	rows, err := s.writer.Query(fileSelectColumns+`
		FROM files WHERE is_deleted = 0
		ORDER BY modified_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("list files: %w", err))
	}
	defer rows.Close()
	return scanFiles(rows)
}

func (s *Store) GetFileContent(fileID int64) (*FileContent, error) {
	var fc FileContent
	var text, summary sql.NullString
	err := s.writer.QueryRow(`
		SELECT file_id, text_content, word_count, summary FROM file_content WHERE file_id = ?
	`, fileID).Scan(&fc.FileID, &text, &fc.WordCount, &summary)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("get file_content for file %d: %w", fileID, err))
	}
	fc.TextContent = text.String
	fc.HasText = text.Valid
	fc.Summary = summary.String
	fc.HasSummary = summary.Valid
	return &fc, nil
}

// MarkFileDeleted soft-deletes a File; the FTS trigger removes its row.
func (s *Store) MarkFileDeleted(id int64) error {
	_, err := s.writer.Exec(`UPDATE files SET is_deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("mark file %d deleted: %w", id, err))
	}
	return nil
}

// DeleteFile hard-deletes a File and cascades to its content and embedding.
// This is an administrative action, not part of the normal re-index path.
func (s *Store) DeleteFile(id int64) error {
	tx, err := s.writer.Begin()
	if err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("begin delete_file tx for %d: %w", id, err))
	}
	defer tx.Rollback()

	if err := deleteEmbedding(tx, id); err != nil {
		return cortexerr.NewDatabaseError(err)
	}
	if _, err := tx.Exec(`DELETE FROM file_content WHERE file_id = ?`, id); err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("delete file_content for %d: %w", id, err))
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE id = ?`, id); err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("delete file %d: %w", id, err))
	}

	if err := tx.Commit(); err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("commit delete_file for %d: %w", id, err))
	}
	return nil
}

// GetDBStats reports total and indexed file counts plus total size.
// indexed_files counts distinct non-deleted files with a file_content row.
func (s *Store) GetDBStats() (DBStats, error) {
	var stats DBStats
	err := s.writer.QueryRow(`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM files WHERE is_deleted = 0`).
		Scan(&stats.TotalFiles, &stats.TotalSizeBytes)
	if err != nil {
		return DBStats{}, cortexerr.NewDatabaseError(fmt.Errorf("count files: %w", err))
	}

	err = s.writer.QueryRow(`
		SELECT COUNT(DISTINCT f.id)
		FROM files f
		INNER JOIN file_content fc ON fc.file_id = f.id
		WHERE f.is_deleted = 0
	`).Scan(&stats.IndexedFiles)
	if err != nil {
		return DBStats{}, cortexerr.NewDatabaseError(fmt.Errorf("count indexed files: %w", err))
	}

	return stats, nil
}

const fileSelectColumns = `
	SELECT id, path, filename, file_type, size, hash, root_path, created_at, modified_at, last_indexed, is_deleted
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var f File
	var hash sql.NullString
	var createdAt, modifiedAt, lastIndexed string
	var isDeleted int
	err := row.Scan(&f.ID, &f.Path, &f.Filename, &f.FileType, &f.Size, &hash, &f.RootPath,
		&createdAt, &modifiedAt, &lastIndexed, &isDeleted)
	if err != nil {
		return nil, err
	}
	f.Hash = hash.String
	f.IsDeleted = isDeleted != 0
	f.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	f.ModifiedAt, _ = time.Parse(timeLayout, modifiedAt)
	f.LastIndexed, _ = time.Parse(timeLayout, lastIndexed)
	return &f, nil
}

func scanFiles(rows *sql.Rows) ([]File, error) {
	var out []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file rows: %w", err)
	}
	return out, nil
}
