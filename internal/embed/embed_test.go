package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test plan:
// - MockProvider returns deterministic, unit-norm vectors of its dimension
// - identical text embeds identically; different text embeds differently
// - MockProvider.Close/SetCloseError/SetEmbedError behave as configured
// - CosineSimilarity: identical vectors score 1, zero-norm vectors score 0
// - FindTopK: threshold filters, stable tiebreak orders by ID ascending, k truncates
// - GenerateAllEmbeddings: batches texts and reports progress per batch

func TestMockProvider_DeterministicUnitNorm(t *testing.T) {
	p := NewMockProvider()
	ctx := context.Background()

	vec, err := p.Embed(ctx, "hello world")
	require.NoError(t, err)
	require.Len(t, vec, p.Dimensions())

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-4)

	again, err := p.Embed(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, vec, again)

	other, err := p.Embed(ctx, "goodbye world")
	require.NoError(t, err)
	assert.NotEqual(t, vec, other)
}

func TestMockProvider_CloseAndErrors(t *testing.T) {
	p := NewMockProvider()
	require.False(t, p.IsClosed())

	require.NoError(t, p.Close())
	require.True(t, p.IsClosed())

	p2 := NewMockProvider()
	sentinel := assert.AnError
	p2.SetEmbedError(sentinel)
	_, err := p2.Embed(context.Background(), "x")
	assert.ErrorIs(t, err, sentinel)
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-6)

	zero := []float32{0, 0, 0}
	assert.Equal(t, float32(0), CosineSimilarity(a, zero))
}

func TestFindTopK_ThresholdAndStableTiebreak(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 3, Vector: []float32{1, 0}},  // score 1.0
		{ID: 1, Vector: []float32{1, 0}},  // score 1.0, ties with ID 3
		{ID: 2, Vector: []float32{0, 1}},  // score 0.0, filtered by threshold
	}

	results := FindTopK(query, candidates, 10, 0.5)
	require.Len(t, results, 2)
	// Equal scores tiebreak by ascending ID.
	assert.Equal(t, int64(1), results[0].ID)
	assert.Equal(t, int64(3), results[1].ID)
}

func TestFindTopK_TruncatesToK(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{1, 0}},
		{ID: 2, Vector: []float32{1, 0}},
		{ID: 3, Vector: []float32{1, 0}},
	}

	results := FindTopK(query, candidates, 2, 0)
	require.Len(t, results, 2)
}

func TestGenerateAllEmbeddings_ReportsProgressPerBatch(t *testing.T) {
	p := NewMockProvider()
	texts := []string{"a", "b", "c", "d", "e"}

	progressCh := make(chan BatchProgress, 10)
	results, err := GenerateAllEmbeddings(context.Background(), p, texts, 2, progressCh)
	close(progressCh)

	require.NoError(t, err)
	require.Len(t, results, 5)

	var updates []BatchProgress
	for u := range progressCh {
		updates = append(updates, u)
	}
	require.Len(t, updates, 3) // batches of 2, 2, 1
	assert.Equal(t, 5, updates[len(updates)-1].ProcessedChunks)
	assert.Equal(t, 5, updates[len(updates)-1].TotalChunks)
}
