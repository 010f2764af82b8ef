package storage

import (
	"database/sql"
	"fmt"
)

// CreateFTSIndex creates the FTS5 virtual table backing lexical search.
// Content is duplicated into files_fts (not external-content) and kept in
// sync purely by triggers, mirroring the teacher's files_fts_insert/update/
// delete trigger trio; rowid equals files.id so joins back to files are cheap.
func CreateFTSIndex(db *sql.DB) error {
	createSQL := `
		CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
			filename,
			text_content,
			tokenize = 'porter unicode61'
		)
	`
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("failed to create FTS5 index: %w", err)
	}
	return nil
}

// createFTSTriggers keeps files_fts in sync with file_content and files.
// The FTS row for a file exists iff it has non-null text_content and the
// file is not soft-deleted (§3 invariant b).
func createFTSTriggers(db *sql.DB) error {
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS file_content_fts_ai AFTER INSERT ON file_content
		 BEGIN
		   DELETE FROM files_fts WHERE rowid = NEW.file_id;
		   INSERT INTO files_fts(rowid, filename, text_content)
		   SELECT NEW.file_id, f.filename, NEW.text_content
		   FROM files f
		   WHERE f.id = NEW.file_id AND f.is_deleted = 0 AND NEW.text_content IS NOT NULL;
		 END`,
		`CREATE TRIGGER IF NOT EXISTS file_content_fts_au AFTER UPDATE OF text_content ON file_content
		 BEGIN
		   DELETE FROM files_fts WHERE rowid = NEW.file_id;
		   INSERT INTO files_fts(rowid, filename, text_content)
		   SELECT NEW.file_id, f.filename, NEW.text_content
		   FROM files f
		   WHERE f.id = NEW.file_id AND f.is_deleted = 0 AND NEW.text_content IS NOT NULL;
		 END`,
		`CREATE TRIGGER IF NOT EXISTS file_content_fts_ad AFTER DELETE ON file_content
		 BEGIN
		   DELETE FROM files_fts WHERE rowid = OLD.file_id;
		 END`,
		`CREATE TRIGGER IF NOT EXISTS files_fts_soft_delete AFTER UPDATE OF is_deleted ON files
		 WHEN NEW.is_deleted = 1 AND OLD.is_deleted = 0
		 BEGIN
		   DELETE FROM files_fts WHERE rowid = NEW.id;
		 END`,
		`CREATE TRIGGER IF NOT EXISTS files_fts_rename_au AFTER UPDATE OF filename ON files
		 WHEN OLD.is_deleted = 0
		 BEGIN
		   UPDATE files_fts SET filename = NEW.filename WHERE rowid = NEW.id;
		 END`,
	}

	for _, stmt := range triggers {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create FTS trigger: %w", err)
		}
	}
	return nil
}

// searchFilesFTS runs a tokenized match against files_fts joined with files,
// returning SearchResult rows with a literal <mark>…</mark> snippet.
func searchFilesFTS(db *sql.DB, query string, limit int) ([]SearchResult, error) {
	sqlQuery := `
		SELECT
			f.id,
			f.path,
			f.filename,
			snippet(files_fts, 1, '<mark>', '</mark>', '...', 32) AS snippet,
			files_fts.rank
		FROM files_fts
		INNER JOIN files f ON f.id = files_fts.rowid
		WHERE files_fts MATCH ? AND f.is_deleted = 0
		ORDER BY files_fts.rank
		LIMIT ?
	`

	rows, err := db.Query(sqlQuery, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query FTS index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.FileID, &r.Path, &r.Filename, &r.Snippet, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan FTS result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating FTS results: %w", err)
	}
	return results, nil
}
