package ingestion

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pdfrag/ai"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/loader"
	"github.com/poiesic/pdfrag/storage"
)

const (
	// DefaultBatchSize is the number of chunks sent per embedding request.
	DefaultBatchSize = 100

	// DefaultRetryDelay is the wait before the first retry.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Report summarizes a completed ingestion run.
type Report struct {
	Documents int // Page-level documents extracted
	Chunks    int // Chunks embedded and written
	Inserted  int // Chunks whose id was new
	Replaced  int // Chunks that overwrote an existing id
	Elapsed   time.Duration
}

// Pipeline loads a source file, splits it, embeds the chunks and writes
// them to a vector store.
type Pipeline struct {
	loader        loader.Loader
	splitter      *Splitter
	embedder      ai.Embedder
	store         storage.VectorStore
	pool          *ants.Pool
	batchSize     int
	maxAttempts   int
	retryDelay    time.Duration
	namespacedIDs bool
	progress      io.Writer
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithWorkers sets how many embedding batches run concurrently.
// Default is 1, which embeds batches one after another.
func WithWorkers(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of chunks per embedding request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithMaxAttempts sets how many times a failed embedding batch is tried.
// Default is 1: failures propagate immediately.
func WithMaxAttempts(attempts int) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = attempts
		return nil
	}
}

// WithRetryDelay sets the backoff base delay.
// Default is DefaultRetryDelay.
func WithRetryDelay(delay time.Duration) Option {
	return func(p *Pipeline) error {
		p.retryDelay = delay
		return nil
	}
}

// WithNamespacedIDs prefixes chunk ids with the source file name so that
// ingesting a second file does not overwrite the first.
func WithNamespacedIDs(enabled bool) Option {
	return func(p *Pipeline) error {
		p.namespacedIDs = enabled
		return nil
	}
}

// WithSplitter replaces the default 1000/150 splitter.
func WithSplitter(splitter *Splitter) Option {
	return func(p *Pipeline) error {
		if splitter != nil {
			p.splitter = splitter
		}
		return nil
	}
}

// WithProgress reports embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	ldr loader.Loader,
	embedder ai.Embedder,
	store storage.VectorStore,
	opts ...Option,
) (*Pipeline, error) {
	if ldr == nil {
		return nil, ErrLoaderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	p := &Pipeline{
		loader:      ldr,
		splitter:    NewDefaultSplitter(),
		embedder:    embedder,
		store:       store,
		batchSize:   DefaultBatchSize,
		maxAttempts: 1,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.pool == nil {
		pool, err := ants.NewPool(1)
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// Run ingests the file at path. It returns ErrNoDocuments or ErrNoSplits,
// without touching the store, when there is nothing to write. Embedding and
// storage errors are returned as-is.
func (p *Pipeline) Run(ctx context.Context, path string) (*Report, error) {
	start := time.Now()

	docs, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		p.logger.Info("no documents found", "path", path)
		return nil, ErrNoDocuments
	}

	splits, err := p.splitter.Split(docs)
	if err != nil {
		return nil, err
	}
	if len(splits) == 0 {
		p.logger.Info("no document splits created", "path", path, "documents", len(docs))
		return nil, ErrNoSplits
	}
	p.logger.Debug("split documents", "documents", len(docs), "chunks", len(splits))

	chunks := p.buildChunks(path, splits)

	progress := NewProgressTracker(p.progress, len(chunks))
	progress.Start()
	be := &batchEmbedder{
		embedder:    p.embedder,
		pool:        p.pool,
		batchSize:   p.batchSize,
		maxAttempts: p.maxAttempts,
		retryDelay:  p.retryDelay,
		logger:      p.logger,
	}
	if err := be.embed(ctx, chunks, progress); err != nil {
		p.logger.Error("error generating embeddings", "err", err)
		return nil, err
	}
	progress.Finish()

	result, err := p.store.Upsert(ctx, chunks...)
	if err != nil {
		p.logger.Error("error writing chunks", "collection", p.store.Collection(), "err", err)
		return nil, err
	}
	if result.Replaced > 0 {
		p.logger.Warn("overwrote existing chunks", "collection", p.store.Collection(), "replaced", result.Replaced)
	}

	report := &Report{
		Documents: len(docs),
		Chunks:    len(chunks),
		Inserted:  result.Inserted,
		Replaced:  result.Replaced,
		Elapsed:   time.Since(start),
	}
	p.logger.Info("ingestion complete",
		"path", path,
		"documents", report.Documents,
		"chunks", report.Chunks,
		"inserted", report.Inserted,
		"replaced", report.Replaced,
		"elapsed", report.Elapsed)
	return report, nil
}

// buildChunks strips empty metadata and assigns ordinal ids.
func (p *Pipeline) buildChunks(path string, splits []core.Document) []*core.Chunk {
	chunks := make([]*core.Chunk, len(splits))
	for i, split := range splits {
		id := core.ChunkID(i)
		if p.namespacedIDs {
			source, _ := split.Metadata[core.MetadataSource].(string)
			if source == "" {
				source = path
			}
			id = core.NamespacedChunkID(source, i)
		}
		chunks[i] = &core.Chunk{
			ID:       id,
			Content:  split.Content,
			Metadata: core.CleanMetadata(split.Metadata),
		}
	}
	return chunks
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
