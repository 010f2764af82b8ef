package onnx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getModelPaths returns paths to ONNX models if available.
// Returns empty strings if models not downloaded.
func getModelPaths() (onnxPath, tokenizerPath string) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}

	modelDir := filepath.Join(homeDir, ".cortex", "models", "all-MiniLM-L6-v2")
	onnxPath = filepath.Join(modelDir, "model.onnx")
	tokenizerPath = filepath.Join(modelDir, "tokenizer.json")

	if _, err := os.Stat(onnxPath); os.IsNotExist(err) {
		return "", ""
	}
	if _, err := os.Stat(tokenizerPath); os.IsNotExist(err) {
		return "", ""
	}

	return onnxPath, tokenizerPath
}

func TestNewEmbeddingModel(t *testing.T) {
	t.Parallel()

	onnxPath, tokenizerPath := getModelPaths()
	if onnxPath == "" || tokenizerPath == "" {
		t.Skip("ONNX models not downloaded, skipping test")
	}

	t.Run("ValidPaths", func(t *testing.T) {
		model, err := NewEmbeddingModel(onnxPath, tokenizerPath)
		require.NoError(t, err)
		require.NotNil(t, model)
		require.NotNil(t, model.session)
		require.NotNil(t, model.tokenizer)

		err = model.Destroy()
		assert.NoError(t, err)
	})

	t.Run("InvalidONNXPath", func(t *testing.T) {
		model, err := NewEmbeddingModel("/nonexistent/model.onnx", tokenizerPath)
		assert.Error(t, err)
		assert.Nil(t, model)
	})

	t.Run("InvalidTokenizerPath", func(t *testing.T) {
		model, err := NewEmbeddingModel(onnxPath, "/nonexistent/tokenizer.json")
		assert.Error(t, err)
		assert.Nil(t, model)
	})
}

func TestEmbedBatch_Single(t *testing.T) {
	t.Parallel()

	onnxPath, tokenizerPath := getModelPaths()
	if onnxPath == "" || tokenizerPath == "" {
		t.Skip("ONNX models not downloaded, skipping test")
	}

	model, err := NewEmbeddingModel(onnxPath, tokenizerPath)
	require.NoError(t, err)
	defer model.Destroy()

	texts := []string{"Hello, world!"}
	embeddings, err := model.EmbedBatch(texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	require.Len(t, embeddings[0], Dimensions)

	norm := computeL2Norm(embeddings[0])
	assert.InDelta(t, 1.0, norm, 0.01, "embedding should be approximately normalized")

	hasNonZero := false
	for _, v := range embeddings[0] {
		if v != 0 {
			hasNonZero = true
			break
		}
	}
	assert.True(t, hasNonZero, "embedding should contain non-zero values")
}

func TestEmbedBatch_Multiple(t *testing.T) {
	t.Parallel()

	onnxPath, tokenizerPath := getModelPaths()
	if onnxPath == "" || tokenizerPath == "" {
		t.Skip("ONNX models not downloaded, skipping test")
	}

	model, err := NewEmbeddingModel(onnxPath, tokenizerPath)
	require.NoError(t, err)
	defer model.Destroy()

	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"Machine learning",
		"Embedding models convert text to vectors",
	}

	embeddings, err := model.EmbedBatch(texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	for i, emb := range embeddings {
		require.Len(t, emb, Dimensions, "text %d: expected %d-dimensional embedding", i, Dimensions)

		norm := computeL2Norm(emb)
		assert.InDelta(t, 1.0, norm, 0.01, "text %d: embedding should be normalized", i)
	}

	similarity01 := cosineSimilarity(embeddings[0], embeddings[1])
	similarity12 := cosineSimilarity(embeddings[1], embeddings[2])
	similarity02 := cosineSimilarity(embeddings[0], embeddings[2])

	assert.Less(t, similarity01, 0.99, "different texts should have distinct embeddings")
	assert.Less(t, similarity12, 0.99, "different texts should have distinct embeddings")
	assert.Less(t, similarity02, 0.99, "different texts should have distinct embeddings")
}

func TestEmbedBatch_EmptyText(t *testing.T) {
	t.Parallel()

	onnxPath, tokenizerPath := getModelPaths()
	if onnxPath == "" || tokenizerPath == "" {
		t.Skip("ONNX models not downloaded, skipping test")
	}

	model, err := NewEmbeddingModel(onnxPath, tokenizerPath)
	require.NoError(t, err)
	defer model.Destroy()

	texts := []string{""}
	embeddings, err := model.EmbedBatch(texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 1)
	require.Len(t, embeddings[0], Dimensions)
}

func TestEmbedBatch_EmptySlice(t *testing.T) {
	t.Parallel()

	onnxPath, tokenizerPath := getModelPaths()
	if onnxPath == "" || tokenizerPath == "" {
		t.Skip("ONNX models not downloaded, skipping test")
	}

	model, err := NewEmbeddingModel(onnxPath, tokenizerPath)
	require.NoError(t, err)
	defer model.Destroy()

	texts := []string{}
	embeddings, err := model.EmbedBatch(texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 0)
}

func TestMeanPoolAndNormalize_IncludesPaddingPositions(t *testing.T) {
	t.Parallel()

	// Two positions, two dims: position 0 is the only "real" token
	// ([1, 1]), position 1 is padding ([0, 0]) but still enters the mean
	// per the mean-pool-over-padding contract, halving the pooled values
	// before normalization.
	hidden := []float32{1, 1, 0, 0}

	pooled := meanPoolAndNormalize(hidden, 0, 2, 2)

	require.Len(t, pooled, 2)
	norm := computeL2Norm(pooled)
	assert.InDelta(t, 1.0, norm, 1e-6)
	assert.InDelta(t, pooled[0], pooled[1], 1e-6)
}

func TestMeanPoolAndNormalize_ZeroVectorStaysZero(t *testing.T) {
	t.Parallel()

	hidden := make([]float32, 2*3)
	pooled := meanPoolAndNormalize(hidden, 0, 2, 3)

	require.Len(t, pooled, 3)
	for _, v := range pooled {
		assert.Equal(t, float32(0), v)
	}
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	onnxPath, tokenizerPath := getModelPaths()
	if onnxPath == "" || tokenizerPath == "" {
		t.Skip("ONNX models not downloaded, skipping test")
	}

	model, err := NewEmbeddingModel(onnxPath, tokenizerPath)
	require.NoError(t, err)

	err = model.Destroy()
	assert.NoError(t, err)

	// Second destroy should be safe (idempotent).
	err = model.Destroy()
	assert.NoError(t, err)
}

func TestDestroy_NilSession(t *testing.T) {
	t.Parallel()

	model := &EmbeddingModel{
		session:   nil,
		tokenizer: nil,
	}

	err := model.Destroy()
	assert.NoError(t, err)
}

func computeL2Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (normA * normB)
}
