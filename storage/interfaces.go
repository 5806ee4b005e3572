package storage

import (
	"context"

	"github.com/poiesic/pdfrag/core"
)

// UpsertResult counts how an Upsert call resolved.
type UpsertResult struct {
	// Inserted is the number of ids that did not exist before the call.
	Inserted int
	// Replaced is the number of ids that existed and were overwritten.
	Replaced int
}

// Total returns Inserted + Replaced.
func (r UpsertResult) Total() int {
	return r.Inserted + r.Replaced
}

// Add accumulates another result into r.
func (r *UpsertResult) Add(other UpsertResult) {
	r.Inserted += other.Inserted
	r.Replaced += other.Replaced
}

// VectorStore is a named collection of chunks with their embeddings.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// Upsert writes chunks keyed by ID. An existing chunk with the same ID is
	// replaced entirely; content is never used for deduplication.
	// Every chunk must carry a vector.
	Upsert(ctx context.Context, chunks ...*core.Chunk) (UpsertResult, error)

	// FindSimilar returns up to limit chunks nearest to vector, ordered by
	// similarity score (highest first). An empty or missing collection yields
	// no results and no error.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error)

	// Collection returns the collection name this store reads and writes.
	Collection() string

	// Close releases resources held by the store.
	Close() error
}
