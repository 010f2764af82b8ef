package storage

import (
	"fmt"

	"github.com/Boswecw/cortex-local/internal/cortexerr"
)

// UpsertEmbedding replaces the vector for a file atomically.
func (s *Store) UpsertEmbedding(fileID int64, vector []float32, modelVersion string) error {
	tx, err := s.writer.Begin()
	if err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("begin upsert_embedding tx for file %d: %w", fileID, err))
	}
	defer tx.Rollback()

	if err := upsertEmbedding(tx, fileID, vector, modelVersion); err != nil {
		return cortexerr.NewDatabaseError(err)
	}

	if err := tx.Commit(); err != nil {
		return cortexerr.NewDatabaseError(fmt.Errorf("commit upsert_embedding for file %d: %w", fileID, err))
	}
	return nil
}

// GetEmbedding returns the embedding for a file, or nil if none exists.
func (s *Store) GetEmbedding(fileID int64) (*Embedding, error) {
	emb, err := getEmbedding(s.writer, fileID)
	if err != nil {
		return nil, cortexerr.NewDatabaseError(err)
	}
	return emb, nil
}

// GetAllEmbeddings loads every embedding belonging to a non-deleted file.
// Used by semantic search to build the candidate set for find_top_k.
func (s *Store) GetAllEmbeddings() ([]Embedding, error) {
	embs, err := getAllEmbeddings(s.writer)
	if err != nil {
		return nil, cortexerr.NewDatabaseError(err)
	}
	return embs, nil
}

func (s *Store) CountEmbeddings() (int, error) {
	count, err := countEmbeddings(s.writer)
	if err != nil {
		return 0, cortexerr.NewDatabaseError(err)
	}
	return count, nil
}

// GetFilesWithoutEmbeddings returns up to limit non-deleted files that have
// no embedding row yet, newest-modified first.
func (s *Store) GetFilesWithoutEmbeddings(limit int) ([]File, error) {
	files, err := getFilesWithoutEmbeddings(s.writer, limit)
	if err != nil {
		return nil, cortexerr.NewDatabaseError(err)
	}
	return files, nil
}
