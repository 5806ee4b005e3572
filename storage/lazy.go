package storage

import (
	"context"
	"sync"

	"github.com/poiesic/pdfrag/core"
)

// Opener connects to a vector store.
type Opener func(ctx context.Context) (VectorStore, error)

// LazyStore is a VectorStore that connects on first use. Building one never
// touches the database, so work that ends before any read or write leaves
// the backend alone. A failed connection is retried on the next call.
type LazyStore struct {
	open       Opener
	collection string

	mu     sync.Mutex
	store  VectorStore
	closed bool
}

var _ VectorStore = (*LazyStore)(nil)

// NewLazyStore returns a store for collection that calls open on first use.
func NewLazyStore(collection string, open Opener) (*LazyStore, error) {
	if collection == "" {
		return nil, ErrCollectionRequired
	}
	return &LazyStore{open: open, collection: collection}, nil
}

// Connect opens the underlying store if it is not open yet and returns it.
func (l *LazyStore) Connect(ctx context.Context) (VectorStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrStorageClosed
	}
	if l.store != nil {
		return l.store, nil
	}
	store, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	l.store = store
	return store, nil
}

// Connected reports whether the underlying store has been opened.
func (l *LazyStore) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store != nil
}

// Upsert connects if needed and writes chunks.
func (l *LazyStore) Upsert(ctx context.Context, chunks ...*core.Chunk) (UpsertResult, error) {
	store, err := l.Connect(ctx)
	if err != nil {
		return UpsertResult{}, err
	}
	return store.Upsert(ctx, chunks...)
}

// FindSimilar connects if needed and queries the collection.
func (l *LazyStore) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	store, err := l.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return store.FindSimilar(ctx, vector, limit)
}

// Collection returns the collection name without connecting.
func (l *LazyStore) Collection() string {
	return l.collection
}

// Close closes the underlying store if it was opened. Later calls fail
// with ErrStorageClosed.
func (l *LazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
