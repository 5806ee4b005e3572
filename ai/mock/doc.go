// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	chat := mock.NewMockChatModel()
//	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
//	    return "", errors.New("rate limited")
//	}
//
//	// Check call counts
//	count := chat.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Returns DefaultAnswer and records prompts
//   - MockProvider: Aggregates both and reports the OpenAI family
package mock
