package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LanguageModel answers free-form prompts. Callers own any parsing and
// validation of the returned text.
// Implementations must be thread-safe for concurrent use.
type LanguageModel interface {
	// Complete sends instructions and input to the model and returns its raw reply.
	Complete(ctx context.Context, instructions, input string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
//
// A service that is not configured is reported as nil. Callers treat a nil
// service as unavailable rather than as an error.
type AIProvider interface {
	// Embedder returns the text embedding service, or nil when unconfigured.
	Embedder() Embedder

	// LanguageModel returns the classification model, or nil when unconfigured.
	LanguageModel() LanguageModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
