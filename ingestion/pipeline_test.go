package ingestion

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/poiesic/pdfrag/ai/mock"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/loader"
	"github.com/poiesic/pdfrag/storage"
	"github.com/poiesic/pdfrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loaderFunc adapts a function to loader.Loader.
type loaderFunc func(ctx context.Context, path string) ([]core.Document, error)

func (f loaderFunc) Load(ctx context.Context, path string) ([]core.Document, error) {
	return f(ctx, path)
}

func staticLoader(docs ...core.Document) loader.Loader {
	return loaderFunc(func(context.Context, string) ([]core.Document, error) {
		return docs, nil
	})
}

func page(n int, content string) core.Document {
	return core.Document{
		Content: content,
		Metadata: map[string]any{
			core.MetadataSource:     "/data/manual.pdf",
			core.MetadataPage:       n,
			core.MetadataTotalPages: 2,
			"title":                 "",
			"author":                nil,
		},
	}
}

func newTestStore(t *testing.T) storage.VectorStore {
	t.Helper()
	store, err := badger.NewMemoryStore("test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestPipeline(t *testing.T, ldr loader.Loader, embedder *mock.MockEmbedder, store storage.VectorStore, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(ldr, embedder, store, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNewPipeline_Validation(t *testing.T) {
	store := newTestStore(t)
	embedder := mock.NewMockEmbedder()
	ldr := staticLoader()

	_, err := NewPipeline(nil, embedder, store)
	require.ErrorIs(t, err, ErrLoaderRequired)

	_, err = NewPipeline(ldr, nil, store)
	require.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewPipeline(ldr, embedder, nil)
	require.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(ldr, embedder, store, WithMaxAttempts(0))
	require.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestPipeline_Run(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	embedder := mock.NewMockEmbedder()
	p := newTestPipeline(t, staticLoader(page(1, "first page text"), page(2, "second page text")), embedder, store)

	report, err := p.Run(ctx, "/data/manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 0, report.Replaced)
	assert.Positive(t, report.Elapsed)

	query := mock.GenerateDeterministicVector("second page text", mock.DefaultDimensions)
	hits, err := store.FindSimilar(ctx, query, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, core.ChunkID(1), hits[0].Chunk.ID)
	assert.Equal(t, "second page text", hits[0].Chunk.Content)

	metadata := hits[0].Chunk.Metadata
	assert.Equal(t, "/data/manual.pdf", metadata[core.MetadataSource])
	assert.EqualValues(t, 2, metadata[core.MetadataPage])
	assert.NotContains(t, metadata, "title", "empty values are stripped")
	assert.NotContains(t, metadata, "author", "nil values are stripped")
}

func TestPipeline_RerunReplacesByID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	embedder := mock.NewMockEmbedder()
	p := newTestPipeline(t, staticLoader(page(1, "alpha"), page(2, "beta")), embedder, store)

	_, err := p.Run(ctx, "manual.pdf")
	require.NoError(t, err)

	report, err := p.Run(ctx, "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 2, report.Replaced)
}

func TestPipeline_NamespacedIDs(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p := newTestPipeline(t, staticLoader(page(1, "alpha")), mock.NewMockEmbedder(), store, WithNamespacedIDs(true))

	_, err := p.Run(ctx, "/data/manual.pdf")
	require.NoError(t, err)

	hits, err := store.FindSimilar(ctx, mock.GenerateDeterministicVector("alpha", mock.DefaultDimensions), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "manual-doc-0", hits[0].Chunk.ID)
}

func TestPipeline_CustomSplitter(t *testing.T) {
	splitter, err := NewSplitter(10, 2)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := newTestPipeline(t, staticLoader(page(1, "one two three four five")), mock.NewMockEmbedder(), newTestStore(t),
		WithSplitter(splitter),
		WithLogger(logger),
	)

	report, err := p.Run(context.Background(), "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Chunks)
	assert.Contains(t, logs.String(), "component=ingestion")
}

func TestPipeline_NoDocuments(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p := newTestPipeline(t, staticLoader(), embedder, newTestStore(t))

	report, err := p.Run(context.Background(), "empty.pdf")
	require.ErrorIs(t, err, ErrNoDocuments)
	assert.Nil(t, report)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestPipeline_NoSplits(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := newTestStore(t)
	p := newTestPipeline(t, staticLoader(core.Document{Content: " \n\n "}), embedder, store)

	_, err := p.Run(context.Background(), "blank.pdf")
	require.ErrorIs(t, err, ErrNoSplits)
	assert.Equal(t, 0, embedder.CallCount())

	hits, err := store.FindSimilar(context.Background(), []float32{1}, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPipeline_LoaderError(t *testing.T) {
	loadErr := errors.New("corrupt file")
	ldr := loaderFunc(func(context.Context, string) ([]core.Document, error) { return nil, loadErr })
	p := newTestPipeline(t, ldr, mock.NewMockEmbedder(), newTestStore(t))

	_, err := p.Run(context.Background(), "x.pdf")
	require.ErrorIs(t, err, loadErr)
}

func TestPipeline_EmbeddingErrorPropagates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	embedder := mock.NewMockEmbedder()
	quotaErr := errors.New("quota exceeded")
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, quotaErr
	}
	p := newTestPipeline(t, staticLoader(page(1, "alpha")), embedder, store)

	_, err := p.Run(ctx, "manual.pdf")
	require.ErrorIs(t, err, quotaErr)
	assert.Equal(t, 1, embedder.CallCount(), "no retry by default")

	hits, err := store.FindSimilar(ctx, mock.GenerateDeterministicVector("alpha", mock.DefaultDimensions), 1)
	require.NoError(t, err)
	assert.Empty(t, hits, "nothing is written when embedding fails")
}

func TestPipeline_RetriesWhenConfigured(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("transient")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.GenerateDeterministicVector(text, 8)
		}
		return out, nil
	}
	p := newTestPipeline(t, staticLoader(page(1, "alpha")), embedder, newTestStore(t),
		WithMaxAttempts(3), WithRetryDelay(0))

	report, err := p.Run(context.Background(), "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks)
	assert.EqualValues(t, 2, calls.Load())
}

func TestPipeline_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	p := newTestPipeline(t, staticLoader(page(1, "alpha"), page(2, "beta")), embedder, newTestStore(t))

	_, err := p.Run(context.Background(), "manual.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding result mismatch")
}

func TestPipeline_BatchesPreserveOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	embedder := mock.NewMockEmbedder()

	docs := make([]core.Document, 10)
	for i := range docs {
		docs[i] = core.Document{Content: core.ChunkID(i) + " content", Metadata: map[string]any{core.MetadataPage: i + 1}}
	}

	var progress bytes.Buffer
	p := newTestPipeline(t, staticLoader(docs...), embedder, store,
		WithBatchSize(3), WithWorkers(4), WithProgress(&progress))

	report, err := p.Run(ctx, "manual.pdf")
	require.NoError(t, err)
	assert.Equal(t, 10, report.Chunks)
	assert.Equal(t, 4, embedder.CallCount(), "10 chunks in batches of 3")
	assert.Contains(t, progress.String(), "10/10 (100.0%)")

	// Each id must carry the vector of its own content
	for i := range docs {
		hits, err := store.FindSimilar(ctx, mock.GenerateDeterministicVector(docs[i].Content, mock.DefaultDimensions), 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, core.ChunkID(i), hits[0].Chunk.ID)
		assert.Equal(t, docs[i].Content, hits[0].Chunk.Content)
	}
}

func TestPipeline_PDFEndToEnd(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prose.pdf")
	require.NoError(t, loader.WritePDF(path, []string{prose(480)}, loader.PDFInfo{Title: "Prose"}))

	ldr, err := loader.NewPDFLoader()
	require.NoError(t, err)
	store := newTestStore(t)
	p := newTestPipeline(t, ldr, mock.NewMockEmbedder(), store)

	report, err := p.Run(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 3, report.Chunks)

	hits, err := store.FindSimilar(ctx, mock.GenerateDeterministicVector("abcd", mock.DefaultDimensions), 15)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit.Chunk.ID
		assert.Equal(t, path, hit.Chunk.Metadata[core.MetadataSource])
		assert.Equal(t, "Prose", hit.Chunk.Metadata["title"])
		assert.NotContains(t, hit.Chunk.Metadata, "author")
	}
	assert.ElementsMatch(t, []string{"doc-0", "doc-1", "doc-2"}, ids)
}
