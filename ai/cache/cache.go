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


package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/pdfrag/ai"
	"github.com/poiesic/pdfrag/storage/badger"
)

// digestSize is the blake2b output length used for cache keys.
const digestSize = 32

// CachedEmbedder serves repeated texts from a badger-backed cache and only
// forwards misses to the wrapped embedder. Entries are keyed by model and
// text, so switching models never returns stale vectors.
type CachedEmbedder struct {
	embedder ai.Embedder
	store    *badger.EmbeddingStore
	model    string
	logger   *slog.Logger
}

var _ ai.Embedder = (*CachedEmbedder)(nil)

// Option configures a CachedEmbedder.
type Option func(*CachedEmbedder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *CachedEmbedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New wraps embedder with a cache stored in store.
func New(embedder ai.Embedder, store *badger.EmbeddingStore, model string, opts ...Option) (*CachedEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &CachedEmbedder{
		embedder: embedder,
		store:    store,
		model:    model,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "embedding-cache", "model", model)
	return c, nil
}

// EmbedText returns the cached vector for text or embeds and caches it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts returns vectors in input order. Texts already cached are not
// sent to the wrapped embedder.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	digests := make([][]byte, len(texts))
	for i, text := range texts {
		d, err := c.digest(text)
		if err != nil {
			return nil, err
		}
		digests[i] = d
	}

	vectors, err := c.store.GetEmbeddings(ctx, digests)
	if err != nil {
		// A broken cache must not block embedding
		c.logger.Warn("error reading embedding cache", "err", err)
		vectors = make([][]float32, len(texts))
	}

	var (
		missIdx   []int
		missTexts []string
	)
	for i, vector := range vectors {
		if vector == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	c.logger.Debug("embedding cache lookup", "texts", len(texts), "misses", len(missIdx))
	if len(missIdx) == 0 {
		return vectors, nil
	}

	embedded, err := c.embedder.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(missTexts), len(embedded))
	}

	missDigests := make([][]byte, len(missIdx))
	for j, i := range missIdx {
		vectors[i] = embedded[j]
		missDigests[j] = digests[i]
	}

	if err := c.store.PutEmbeddings(ctx, missDigests, embedded); err != nil {
		c.logger.Warn("error writing embedding cache", "err", err)
	}
	return vectors, nil
}

func (c *CachedEmbedder) digest(text string) ([]byte, error) {
	h, err := blake2b.New(digestSize, nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte(c.model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil), nil
}
