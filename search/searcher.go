package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/pdfrag/ai"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/storage"
)

// Searcher retrieves the chunks closest to a natural-language query.
type Searcher struct {
	embedder ai.Embedder
	store    storage.VectorStore
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher. The embedder must be the one the
// collection was ingested with, or scores are meaningless.
func NewSearcher(embedder ai.Embedder, store storage.VectorStore, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// FindSimilar returns up to limit chunks ranked by similarity to query.
// Fewer results are returned when the collection is smaller than limit.
func (s *Searcher) FindSimilar(ctx context.Context, query string, limit int) ([]*core.SearchResult, error) {
	return s.FindSimilarWithMonitor(ctx, query, limit, nil)
}

// FindSimilarWithMonitor is FindSimilar with progress callbacks.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, limit)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(embedding))

	results, err := s.store.FindSimilar(ctx, embedding, limit)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "collection", s.store.Collection(), "err", err)
		return nil, err
	}
	s.logger.Debug("retrieved chunks", "query", query, "limit", limit, "hits", len(results))
	monitor.Finish(results)

	return results, nil
}
