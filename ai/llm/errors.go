package llm

import "errors"

var (
	// ErrClientRequired is returned when a service is built without a client.
	ErrClientRequired = errors.New("llm client required")

	// ErrEmbeddingCountMismatch is returned when the provider returns a
	// different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count does not match input count")
)
