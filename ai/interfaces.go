package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces free text from a prompt.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate sends prompt to the model and returns its completion.
	// maxTokens <= 0 leaves the limit to the model.
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Ranker scores passages against a query, one pair at a time, so the
// query and passage are judged together rather than as separate vectors.
// Implementations must be thread-safe for concurrent use.
type Ranker interface {
	// Rank returns one relevance score per text, in input order.
	// Higher scores are more relevant.
	Rank(ctx context.Context, query string, texts []string) ([]float64, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
//
// Queries and passages may be encoded by different models (dual encoders).
// Providers configured with a single model return the same Embedder for both.
type AIProvider interface {
	// QueryEmbedder returns the encoder applied to search queries.
	QueryEmbedder() Embedder

	// PassageEmbedder returns the encoder applied to indexed spans.
	PassageEmbedder() Embedder

	// Generator returns the text generator used for long-form answers.
	Generator() Generator

	// Ranker returns the passage ranker, or nil when none is configured.
	Ranker() Ranker

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
