package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// MockProvider is a test implementation that generates deterministic,
// unit-norm embeddings. It tracks Close() calls and can simulate errors.
type MockProvider struct {
	mu          sync.Mutex
	dimensions  int
	closeCalled bool
	closeError  error
	embedError  error
}

// NewMockProvider creates a mock embedding provider for testing.
// It generates deterministic embeddings based on text content.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		dimensions: 384,
	}
}

// SetCloseError configures the mock to return an error on Close().
func (p *MockProvider) SetCloseError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeError = err
}

// SetEmbedError configures the mock to return an error on Embed().
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedError = err
}

// Embed generates a mock embedding by hashing the input text.
func (p *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates mock embeddings by hashing each input text. This
// ensures deterministic, reproducible embeddings for testing, L2-normalized
// like the real provider.
func (p *MockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedError != nil {
		return nil, p.embedError
	}

	embeddings := make([][]float32, len(texts))

	for i, text := range texts {
		hash := sha256.Sum256([]byte(text))

		vec := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}

		embeddings[i] = l2Normalize(vec)
	}

	return embeddings, nil
}

// Dimensions returns the dimensionality of mock embeddings.
func (p *MockProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

// Close tracks that close was called and returns the configured error if set.
func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalled = true
	return p.closeError
}

// IsClosed returns whether Close() has been called.
func (p *MockProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalled
}

func l2Normalize(vec []float32) []float32 {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
