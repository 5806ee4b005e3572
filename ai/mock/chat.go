package mock

import (
	"context"
	"sync"
)

// DefaultAnswer is returned by MockChatModel when no CompleteFunc is set.
const DefaultAnswer = "mock answer"

// MockChatModel is a test double for ai.ChatModel.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, Complete returns DefaultAnswer.
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockChatModel creates a mock chat model with default behavior.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Complete records the prompt and returns the configured answer.
func (m *MockChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return DefaultAnswer, nil
}

// CallCount returns the number of Complete calls.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns every prompt received so far.
func (m *MockChatModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockChatModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded prompts and injected behavior.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.CompleteFunc = nil
}
