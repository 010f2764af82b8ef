package storage

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

// SearchFilesFTS runs a tokenized FTS match, returning SearchResult rows
// ordered by rank (ascending: a stock BM25-style scorer ranks best matches
// lowest). Empty/whitespace queries are rejected.
func (s *Store) SearchFilesFTS(query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, cortexerr.NewInvalidQuery(query, "query must not be empty")
	}
	results, err := searchFilesFTS(s.writer, query, limit)
	if err != nil {
		return nil, cortexerr.NewDatabaseError(err)
	}
	return results, nil
}

// SearchFilesFiltered builds a deterministic, placeholder-bound predicate
// query over files for the optional filter set, applying limit/offset.
// Parameter order always follows filter field declaration order so SQLite's
// query planner sees a stable shape across calls (cache-friendly).
func (s *Store) SearchFilesFiltered(query string, filters *SearchFilters, limit, offset int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, cortexerr.NewInvalidQuery(query, "query must not be empty")
	}

	builder := sq.Select(
		"f.id", "f.path", "f.filename",
		"snippet(files_fts, 1, '<mark>', '</mark>', '...', 32)",
		"files_fts.rank",
	).
		From("files_fts").
		InnerJoin("files f ON f.id = files_fts.rowid").
		Where(sq.Expr("files_fts MATCH ?", query)).
		Where(sq.Eq{"f.is_deleted": 0}).
		PlaceholderFormat(sq.Question)

	if filters != nil {
		if filters.FileType != "" {
			builder = builder.Where(sq.Eq{"f.file_type": filters.FileType})
		}
		if filters.MinSize > 0 {
			builder = builder.Where(sq.GtOrEq{"f.size": filters.MinSize})
		}
		if filters.MaxSize > 0 {
			builder = builder.Where(sq.LtOrEq{"f.size": filters.MaxSize})
		}
		if !filters.DateFrom.IsZero() {
			builder = builder.Where(sq.GtOrEq{"f.modified_at": filters.DateFrom.UTC().Format(timeLayout)})
		}
		if !filters.DateTo.IsZero() {
			builder = builder.Where(sq.LtOrEq{"f.modified_at": filters.DateTo.UTC().Format(timeLayout)})
		}
	}

	builder = builder.OrderBy("files_fts.rank").Limit(uint64(limit)).Offset(uint64(offset))

	rows, err := builder.RunWith(s.writer).Query()
	if err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("filtered search: %w", err))
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.FileID, &r.Path, &r.Filename, &r.Snippet, &r.Score); err != nil {
			return nil, cortexerr.NewDatabaseError(fmt.Errorf("scan filtered search row: %w", err))
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, cortexerr.NewDatabaseError(fmt.Errorf("iterate filtered search rows: %w", err))
	}
	return results, nil
}
