package embed

import (
	"context"
	"fmt"
)

// BatchProgress reports embedding progress for real-time feedback.
type BatchProgress struct {
	BatchIndex      int // Current batch number (1-indexed)
	TotalBatches    int // Total number of batches
	ProcessedChunks int // Number of chunks processed so far
	TotalChunks     int // Total number of chunks to process
}

// GenerateAllEmbeddings embeds texts in batches, reporting progress via
// progressCh after each batch. Used by generate_all_embeddings to backfill
// embeddings for files the indexer has already extracted text from.
func GenerateAllEmbeddings(
	ctx context.Context,
	provider Provider,
	texts []string,
	batchSize int,
	progressCh chan<- BatchProgress,
) ([][]float32, error) {
	totalChunks := len(texts)
	if totalChunks == 0 {
		return [][]float32{}, nil
	}

	numBatches := (totalChunks + batchSize - 1) / batchSize
	results := make([][]float32, totalChunks)

	processedChunks := 0
	for batchIdx := 0; batchIdx < numBatches; batchIdx++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := batchIdx * batchSize
		end := start + batchSize
		if end > totalChunks {
			end = totalChunks
		}

		batchTexts := texts[start:end]

		batchEmbeddings, err := provider.EmbedBatch(ctx, batchTexts)
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d failed: %w", batchIdx+1, numBatches, err)
		}

		for i, emb := range batchEmbeddings {
			results[start+i] = emb
		}

		processedChunks += len(batchTexts)
		if progressCh != nil {
			progressCh <- BatchProgress{
				BatchIndex:      batchIdx + 1,
				TotalBatches:    numBatches,
				ProcessedChunks: processedChunks,
				TotalChunks:     totalChunks,
			}
		}
	}

	return results, nil
}
