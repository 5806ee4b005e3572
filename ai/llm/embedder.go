package llm

import (
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/pdfrag/ai"
	"github.com/tmc/langchaingo/embeddings"
)

// Embedder implements ai.Embedder on top of a langchaingo embedding client.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder wraps client in a langchaingo embedder.
// Used by Provider to manage the instance.
func newEmbedder(client embeddings.EmbedderClient, model string, kind ai.ProviderKind) (*Embedder, error) {
	if client == nil {
		return nil, ErrClientRequired
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		model:    model,
		logger:   slog.Default().With("component", kind.String()+"-embedder"),
	}, nil
}

// Model returns the embedding model name, or "" when the client default is used.
func (e *Embedder) Model() string {
	return e.model
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for query", "length", len(text))

	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	return vector, nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	// EmbedDocuments rewrites newlines in place; keep the caller's slice intact.
	vectors, err := e.embedder.EmbedDocuments(ctx, slices.Clone(texts))
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, ErrEmbeddingCountMismatch
	}

	return vectors, nil
}
