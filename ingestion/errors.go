package ingestion

import "errors"

var (
	// ErrLoaderRequired is returned when a document loader is not provided.
	ErrLoaderRequired = errors.New("document loader required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrNoDocuments is returned when the source yields no text.
	// Callers treat it as an empty run rather than a failure.
	ErrNoDocuments = errors.New("no documents found")

	// ErrNoSplits is returned when splitting produces no chunks.
	// Callers treat it as an empty run rather than a failure.
	ErrNoSplits = errors.New("no document splits created")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidChunking is returned when chunk size or overlap are out of range.
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")
)
