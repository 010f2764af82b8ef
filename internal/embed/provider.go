package embed

import "context"

// Provider defines the interface for embedding text into vectors.
// Implementations may use local models or other embedding services. A
// Provider is not re-entrant: callers must not invoke it concurrently from
// multiple goroutines on the same instance.
type Provider interface {
	// Embed converts a single string into its vector representation.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts a slice of strings into their vector
	// representations, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of the embedding vectors produced
	// by this provider.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
