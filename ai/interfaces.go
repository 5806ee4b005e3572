package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Used for queries.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel produces a completion for a fully rendered prompt.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends prompt to the model and returns the answer text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// AIProvider aggregates the services of one provider family so that
// embeddings and chat completion always come from the same family.
type AIProvider interface {
	// Kind reports which family backs this provider.
	Kind() ProviderKind

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the chat completion service.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
