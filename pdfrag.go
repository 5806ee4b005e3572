// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pdfrag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/pdfrag/ai"
	"github.com/poiesic/pdfrag/ai/cache"
	"github.com/poiesic/pdfrag/ai/llm"
	"github.com/poiesic/pdfrag/chat"
	"github.com/poiesic/pdfrag/config"
	"github.com/poiesic/pdfrag/ingestion"
	"github.com/poiesic/pdfrag/loader"
	"github.com/poiesic/pdfrag/search"
	"github.com/poiesic/pdfrag/storage"
	"github.com/poiesic/pdfrag/storage/badger"
	"github.com/poiesic/pdfrag/storage/pgvector"
)

// ErrConfigRequired is returned when Open is called without a configuration.
var ErrConfigRequired = errors.New("configuration required")

// Engine wires a provider, a vector store and the optional embedding cache
// from one Config, and builds the pipelines that use them.
type Engine struct {
	config       *config.Config
	provider     ai.AIProvider
	embedder     ai.Embedder
	store        storage.VectorStore
	lazy         *storage.LazyStore
	cacheBackend *badger.Backend
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.AIProvider
	store    storage.VectorStore
	logger   *slog.Logger
}

// WithProvider uses provider instead of building one from the configuration.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithStore uses store instead of opening DatabaseURL.
func WithStore(store storage.VectorStore) EngineOption {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Open builds an Engine. Configuration is not validated here; callers run
// ValidateIngest or ValidateChat first so they can report problems their own way.
func Open(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	e := &Engine{
		config: cfg,
		logger: options.logger,
	}

	e.provider = options.provider
	if e.provider == nil {
		provider, err := llm.NewProvider(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
		e.provider = provider
	}
	e.embedder = e.provider.Embedder()

	if cfg.EmbeddingCacheDir != "" {
		if err := e.enableCache(cfg.EmbeddingCacheDir); err != nil {
			e.Close()
			return nil, err
		}
	}

	e.store = options.store
	if e.store == nil {
		// Nothing connects until the first read or write.
		open, err := StoreOpener(cfg.DatabaseURL, cfg.CollectionName, e.logger)
		if err != nil {
			e.Close()
			return nil, err
		}
		lazy, err := storage.NewLazyStore(cfg.CollectionName, open)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.lazy = lazy
		e.store = lazy
	}

	e.logger.Debug("engine ready",
		"provider", e.provider.Kind().String(),
		"collection", e.store.Collection(),
		"cache", cfg.EmbeddingCacheDir != "")
	return e, nil
}

func (e *Engine) enableCache(dir string) error {
	backend, err := badger.OpenBackend(dir, false, badger.WithBackendLogger(e.logger))
	if err != nil {
		return fmt.Errorf("opening embedding cache: %w", err)
	}
	e.cacheBackend = backend

	embeddingStore, err := badger.NewEmbeddingStore(backend)
	if err != nil {
		return err
	}

	kind := e.provider.Kind()
	model := kind.String()
	if e.config.AI != nil {
		model += ":" + e.config.AI.EmbeddingModel(kind)
	}
	cached, err := cache.New(e.embedder, embeddingStore, model, cache.WithLogger(e.logger))
	if err != nil {
		return err
	}
	e.embedder = cached
	return nil
}

// StoreOpener checks url and returns a function that opens the vector store
// it names. postgres:// and postgresql:// URLs and key=value DSNs select
// pgvector; badger:// URLs select the embedded store. Nothing is opened
// until the returned function runs.
func StoreOpener(url, collection string, logger *slog.Logger) (storage.Opener, error) {
	switch {
	case badger.IsURL(url):
		path, inMemory, err := badger.ParseURL(url)
		if err != nil {
			return nil, err
		}
		return func(context.Context) (storage.VectorStore, error) {
			return badger.Open(path, inMemory, collection, badger.WithLogger(logger))
		}, nil
	case pgvector.IsURL(url):
		return func(ctx context.Context) (storage.VectorStore, error) {
			return pgvector.Open(ctx, url, collection, pgvector.WithLogger(logger))
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnsupportedURL, url)
	}
}

// Connect opens the vector store now instead of on first use. The chat
// command calls it so an unreachable database is reported at startup.
func (e *Engine) Connect(ctx context.Context) error {
	if e.lazy == nil {
		return nil
	}
	_, err := e.lazy.Connect(ctx)
	return err
}

// Close releases the store, the cache and the provider.
func (e *Engine) Close() error {
	var errs []error

	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing vector store", "err", err)
			errs = append(errs, err)
		}
	}
	if e.cacheBackend != nil {
		if err := e.cacheBackend.Close(); err != nil {
			e.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Provider returns the AI provider.
func (e *Engine) Provider() ai.AIProvider {
	return e.provider
}

// Embedder returns the embedder used for ingestion and search, which is
// the provider's embedder behind the cache when one is configured.
func (e *Engine) Embedder() ai.Embedder {
	return e.embedder
}

// Store returns the vector store.
func (e *Engine) Store() storage.VectorStore {
	return e.store
}

// NewIngestionPipeline creates a pipeline configured from the engine's
// Config. opts are applied after the configured ones.
func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	ldr, err := loader.NewPDFLoader(
		loader.WithPassword(e.config.PDFPassword),
		loader.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}

	configured := []ingestion.Option{
		ingestion.WithLogger(e.logger),
		ingestion.WithNamespacedIDs(e.config.NamespaceIDs),
	}
	if e.config.BatchSize > 0 {
		configured = append(configured, ingestion.WithBatchSize(e.config.BatchSize))
	}
	if e.config.Workers > 0 {
		configured = append(configured, ingestion.WithWorkers(e.config.Workers))
	}
	if e.config.MaxAttempts > 0 {
		configured = append(configured, ingestion.WithMaxAttempts(e.config.MaxAttempts))
	}

	return ingestion.NewPipeline(ldr, e.embedder, e.store, append(configured, opts...)...)
}

// NewSearcher creates a searcher over the engine's store.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(e.embedder, e.store, append([]search.Option{search.WithLogger(e.logger)}, opts...)...)
}

// NewSession creates a chat session that retrieves through a new searcher
// and answers with the provider's chat model.
func (e *Engine) NewSession(opts ...chat.Option) (*chat.Session, error) {
	searcher, err := e.NewSearcher()
	if err != nil {
		return nil, err
	}
	return chat.NewSession(searcher, e.provider.ChatModel(), append([]chat.Option{chat.WithLogger(e.logger)}, opts...)...)
}
