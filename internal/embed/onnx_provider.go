package embed

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Boswecw/cortex-local/internal/embed/onnx"
)

// OnnxProvider adapts onnx.EmbeddingModel to the Provider interface. It is
// not re-entrant: the underlying ONNX session and tokenizer must not be
// shared across goroutines that call Embed/EmbedBatch concurrently.
type OnnxProvider struct {
	model *onnx.EmbeddingModel
}

// NewOnnxProvider loads model.onnx and tokenizer.json from modelDir
// (conventionally ${HOME}/.cortex/models/<name>).
func NewOnnxProvider(modelDir string) (*OnnxProvider, error) {
	onnxPath := filepath.Join(modelDir, "model.onnx")
	tokenizerPath := filepath.Join(modelDir, "tokenizer.json")

	model, err := onnx.NewEmbeddingModel(onnxPath, tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load embedding model from %s: %w", modelDir, err)
	}

	return &OnnxProvider{model: model}, nil
}

func (p *OnnxProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *OnnxProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return p.model.EmbedBatch(texts)
}

func (p *OnnxProvider) Dimensions() int {
	return onnx.Dimensions
}

func (p *OnnxProvider) Close() error {
	return p.model.Destroy()
}
