package onnx

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/daulet/tokenizers"
	onnxruntime "github.com/yalue/onnxruntime_go"
)

// EmbeddingModel wraps ONNX Runtime for text embeddings.
// Not safe for concurrent use by multiple goroutines on the same instance.
type EmbeddingModel struct {
	session   *onnxruntime.DynamicAdvancedSession
	tokenizer *tokenizers.Tokenizer
}

// Dimensions is the output vector size of all-MiniLM-L6-v2.
const Dimensions = 384

// MaxLength is the fixed sequence length every input is truncated or padded
// to before inference.
const MaxLength = 128

// NewEmbeddingModel creates a new embedding model from an ONNX model file and
// a tokenizer file. If tokenizerPath does not name a file called
// tokenizer.json, the tokenizer.json beside onnxPath is loaded instead.
//
// The model should be all-MiniLM-L6-v2 (384 dimensions).
func NewEmbeddingModel(onnxPath, tokenizerPath string) (*EmbeddingModel, error) {
	if filepath.Base(tokenizerPath) != "tokenizer.json" {
		tokenizerPath = filepath.Join(filepath.Dir(onnxPath), "tokenizer.json")
	}

	tokenizer, err := tokenizers.FromFile(tokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	inputs, outputs, err := onnxruntime.GetInputOutputInfo(onnxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model info: %w", err)
	}

	inputNames := make([]string, len(inputs))
	outputNames := make([]string, len(outputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	for i := range outputs {
		outputNames[i] = outputs[i].Name
	}

	session, err := onnxruntime.NewDynamicAdvancedSession(
		onnxPath,
		inputNames,
		outputNames,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &EmbeddingModel{
		session:   session,
		tokenizer: tokenizer,
	}, nil
}

// EmbedBatch generates embeddings for multiple texts in a single batch.
// Each input is tokenized with truncation/padding to MaxLength, run through
// the model, then mean-pooled over every sequence position (including
// padding positions) and L2-normalized. This mirrors the reference
// implementation's pooling contract rather than the more common
// attention-masked mean or CLS-token pooling.
func (m *EmbeddingModel) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batchSize := len(texts)
	inputIDs := make([]int64, batchSize*MaxLength)
	attentionMask := make([]int64, batchSize*MaxLength)

	for i, text := range texts {
		encoding := m.tokenizer.EncodeWithOptions(text, true,
			tokenizers.WithReturnAttentionMask(),
		)

		for j := 0; j < MaxLength; j++ {
			idx := i*MaxLength + j
			if j < len(encoding.IDs) {
				inputIDs[idx] = int64(encoding.IDs[j])
				attentionMask[idx] = int64(encoding.AttentionMask[j])
			}
			// Beyond the real tokens, both arrays stay zero: pad id 0, mask 0.
		}
	}

	inputShape := onnxruntime.NewShape(int64(batchSize), int64(MaxLength))

	inputTensor, err := onnxruntime.NewTensor(inputShape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	attentionTensor, err := onnxruntime.NewTensor(inputShape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create attention tensor: %w", err)
	}
	defer attentionTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor, attentionTensor}
	outputs := []onnxruntime.Value{nil}

	if err := m.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	if outputs[0] == nil {
		return nil, fmt.Errorf("output tensor is nil")
	}

	resultTensor, ok := outputs[0].(*onnxruntime.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type, expected *Tensor[float32]")
	}
	defer resultTensor.Destroy()

	hidden := resultTensor.GetData()

	result := make([][]float32, batchSize)
	for i := 0; i < batchSize; i++ {
		result[i] = meanPoolAndNormalize(hidden, i, MaxLength, Dimensions)
	}

	return result, nil
}

// meanPoolAndNormalize averages hidden states across every sequence position
// for batch item i, including padding positions, then L2-normalizes the
// result.
func meanPoolAndNormalize(hidden []float32, batchIdx, seqLen, dim int) []float32 {
	pooled := make([]float64, dim)
	base := batchIdx * seqLen * dim

	for pos := 0; pos < seqLen; pos++ {
		offset := base + pos*dim
		for d := 0; d < dim; d++ {
			pooled[d] += float64(hidden[offset+d])
		}
	}

	var sumSq float64
	out := make([]float32, dim)
	for d := 0; d < dim; d++ {
		pooled[d] /= float64(seqLen)
		sumSq += pooled[d] * pooled[d]
	}

	norm := math.Sqrt(sumSq)
	for d := 0; d < dim; d++ {
		if norm == 0 {
			out[d] = 0
			continue
		}
		out[d] = float32(pooled[d] / norm)
	}
	return out
}

// Destroy cleans up ONNX session and tokenizer resources.
func (m *EmbeddingModel) Destroy() error {
	if m.tokenizer != nil {
		m.tokenizer.Close()
		m.tokenizer = nil
	}

	if m.session != nil {
		err := m.session.Destroy()
		m.session = nil
		return err
	}
	return nil
}
