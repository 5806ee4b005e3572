package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/pdfrag/ai"
	"github.com/poiesic/pdfrag/core"
)

// batchEmbedder fills in chunk vectors batch by batch on a worker pool.
// Each batch writes back into its own index range, so chunk order never
// depends on completion order.
type batchEmbedder struct {
	embedder    ai.Embedder
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	logger      *slog.Logger
}

func (be *batchEmbedder) embed(ctx context.Context, chunks []*core.Chunk, progress *ProgressTracker) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(chunks); start += be.batchSize {
		batch := chunks[start:min(start+be.batchSize, len(chunks))]
		first := start

		wg.Add(1)
		err := be.pool.Submit(func() {
			defer wg.Done()
			if err := be.embedBatch(ctx, batch); err != nil {
				fail(fmt.Errorf("embedding chunks %d-%d: %w", first, first+len(batch)-1, err))
				return
			}
			progress.Increment(len(batch))
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}

	wg.Wait()
	return firstErr
}

func (be *batchEmbedder) embedBatch(ctx context.Context, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Content
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = be.embedder.EmbedTexts(ctx, texts)
		return err
	}, be.maxAttempts, be.retryDelay)
	if err != nil {
		return err
	}

	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(vectors))
	}

	for i := range vectors {
		batch[i].Vector = vectors[i]
	}
	be.logger.Debug("embedded batch", "chunks", len(batch))
	return nil
}
