package cache

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is wrapped.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when no embedding store is provided.
	ErrStoreRequired = errors.New("embedding store required")
)
