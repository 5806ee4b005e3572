package search

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/pdfrag/ai/mock"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/storage"
	"github.com/poiesic/pdfrag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMonitor struct {
	query      string
	limit      int
	dimensions int
	results    []*core.SearchResult
}

func (m *recordingMonitor) Start(query string, limit int)       { m.query, m.limit = query, limit }
func (m *recordingMonitor) AfterQueryEmbedding(dimensions int)  { m.dimensions = dimensions }
func (m *recordingMonitor) Finish(results []*core.SearchResult) { m.results = results }

func seededStore(t *testing.T, embedder *mock.MockEmbedder, texts ...string) storage.VectorStore {
	t.Helper()
	store, err := badger.NewMemoryStore("docs")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		vector, err := embedder.EmbedText(context.Background(), text)
		require.NoError(t, err)
		chunks[i] = &core.Chunk{ID: core.ChunkID(i), Content: text, Vector: vector}
	}
	_, err = store.Upsert(context.Background(), chunks...)
	require.NoError(t, err)
	embedder.Reset()
	return store
}

func TestNewSearcher_Validation(t *testing.T) {
	store, err := badger.NewMemoryStore("docs")
	require.NoError(t, err)
	defer store.Close()

	_, err = NewSearcher(nil, store)
	require.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewSearcher(mock.NewMockEmbedder(), nil)
	require.ErrorIs(t, err, ErrStoreRequired)
}

func TestSearcher_FindSimilar(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := seededStore(t, embedder, "installing the agent", "rotating credentials", "backup schedule")

	s, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := s.FindSimilar(context.Background(), "rotating credentials", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.ChunkID(1), results[0].Chunk.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, []string{"rotating credentials"}, embedder.Texts(), "query is embedded once")
}

func TestSearcher_FewerThanLimit(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := seededStore(t, embedder, "a", "b", "c")

	s, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := s.FindSimilar(context.Background(), "anything", 15)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearcher_InvalidLimit(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	s, err := NewSearcher(embedder, seededStore(t, embedder))
	require.NoError(t, err)

	_, err = s.FindSimilar(context.Background(), "q", 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestSearcher_EmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := seededStore(t, embedder, "a")
	embedErr := errors.New("provider down")
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) { return nil, embedErr }

	s, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	_, err = s.FindSimilar(context.Background(), "q", 5)
	require.ErrorIs(t, err, embedErr)
}

func TestSearcher_StoreError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := seededStore(t, embedder, "a")
	require.NoError(t, store.Close())

	s, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	_, err = s.FindSimilar(context.Background(), "q", 5)
	require.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestSearcher_Monitor(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := seededStore(t, embedder, "a", "b")

	s, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := s.FindSimilarWithMonitor(context.Background(), "a", 1, monitor)
	require.NoError(t, err)

	assert.Equal(t, "a", monitor.query)
	assert.Equal(t, 1, monitor.limit)
	assert.Equal(t, mock.DefaultDimensions, monitor.dimensions)
	assert.Equal(t, results, monitor.results)
}
