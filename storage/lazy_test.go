package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/pdfrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records calls made through a LazyStore.
type countingStore struct {
	upserts int
	queries int
	closed  bool
}

func (s *countingStore) Upsert(_ context.Context, chunks ...*core.Chunk) (UpsertResult, error) {
	s.upserts++
	return UpsertResult{Inserted: len(chunks)}, nil
}

func (s *countingStore) FindSimilar(context.Context, []float32, int) ([]*core.SearchResult, error) {
	s.queries++
	return nil, nil
}

func (s *countingStore) Collection() string { return "docs" }

func (s *countingStore) Close() error {
	s.closed = true
	return nil
}

func TestLazyStore_ConnectsOnFirstUse(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{}
	opens := 0
	lazy, err := NewLazyStore("docs", func(context.Context) (VectorStore, error) {
		opens++
		return inner, nil
	})
	require.NoError(t, err)

	assert.Equal(t, "docs", lazy.Collection())
	assert.False(t, lazy.Connected())
	assert.Equal(t, 0, opens, "building the store must not connect")

	result, err := lazy.Upsert(ctx, &core.Chunk{ID: "doc-0", Vector: []float32{1}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	_, err = lazy.FindSimilar(ctx, []float32{1}, 1)
	require.NoError(t, err)

	assert.True(t, lazy.Connected())
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, inner.upserts)
	assert.Equal(t, 1, inner.queries)

	require.NoError(t, lazy.Close())
	assert.True(t, inner.closed)
}

func TestLazyStore_RetriesFailedConnect(t *testing.T) {
	ctx := context.Background()
	refused := errors.New("connection refused")
	opens := 0
	lazy, err := NewLazyStore("docs", func(context.Context) (VectorStore, error) {
		opens++
		if opens == 1 {
			return nil, refused
		}
		return &countingStore{}, nil
	})
	require.NoError(t, err)

	_, err = lazy.FindSimilar(ctx, []float32{1}, 1)
	require.ErrorIs(t, err, refused)
	assert.False(t, lazy.Connected())

	_, err = lazy.FindSimilar(ctx, []float32{1}, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, opens)
}

func TestLazyStore_CloseWithoutConnect(t *testing.T) {
	lazy, err := NewLazyStore("docs", func(context.Context) (VectorStore, error) {
		t.Fatal("closing an unused store must not connect")
		return nil, nil
	})
	require.NoError(t, err)

	require.NoError(t, lazy.Close())

	_, err = lazy.Upsert(context.Background(), &core.Chunk{ID: "doc-0", Vector: []float32{1}})
	require.ErrorIs(t, err, ErrStorageClosed)
}

func TestNewLazyStore_RequiresCollection(t *testing.T) {
	_, err := NewLazyStore("", nil)
	require.ErrorIs(t, err, ErrCollectionRequired)
}
