package export

import "strings"

// targetTokens is the nominal chunk size in tokens; wordsPerChunk converts
// that to an approximate word budget (1 token ~= 0.75 words).
const targetTokens = 500

// wordsPerChunk is round(500 * 0.75) = 375.
const wordsPerChunk = 375

// Chunk is one contiguous slice of a document's text, in document order.
type Chunk struct {
	Position   int
	Content    string
	TokenCount int
}

// ChunkText splits text into whitespace-tokenized word groups of exactly
// wordsPerChunk words, with the remainder as a final shorter chunk. If text
// has no words, a single chunk containing the raw text is returned (even an
// empty one) so callers always get at least one chunk per document.
func ChunkText(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []Chunk{{Position: 0, Content: text, TokenCount: estimateTokens(text)}}
	}

	var chunks []Chunk
	for start := 0; start < len(words); start += wordsPerChunk {
		end := start + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		content := strings.Join(words[start:end], " ")
		chunks = append(chunks, Chunk{
			Position:   len(chunks),
			Content:    content,
			TokenCount: estimateTokens(content),
		})
	}
	return chunks
}

// estimateTokens approximates token count as floor(len(content_bytes)/4).
func estimateTokens(content string) int {
	return len(content) / 4
}
