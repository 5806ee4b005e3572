package chat

import "errors"

var (
	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrChatModelRequired is returned when a chat model is not provided.
	ErrChatModelRequired = errors.New("chat model required")

	// ErrInvalidK is returned when fewer than one context chunk is requested.
	ErrInvalidK = errors.New("k must be greater than 0")
)
