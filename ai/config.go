// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

const (
	// DefaultGoogleChatModel is used when GOOGLE_CHAT_MODEL is unset.
	DefaultGoogleChatModel = "gemini-2.5-flash-lite"

	// DefaultOpenAIChatModel is used when OPENAI_CHAT_MODEL is unset.
	DefaultOpenAIChatModel = "gpt-5-nano"
)

// Config holds credentials and model names for both supported provider families.
// Only the family chosen by SelectProvider is used at runtime.
type Config struct {
	// GoogleAPIKey enables the Google family. It takes precedence when present.
	GoogleAPIKey string

	// OpenAIAPIKey enables the OpenAI family.
	OpenAIAPIKey string

	// OpenAIBaseURL overrides the OpenAI endpoint for compatible servers.
	// Empty means the official API.
	OpenAIBaseURL string

	// GoogleEmbeddingModel is the embedding model for the Google family.
	// Example: "models/embedding-001"
	GoogleEmbeddingModel string

	// OpenAIEmbeddingModel is the embedding model for the OpenAI family.
	// Example: "text-embedding-3-small"
	OpenAIEmbeddingModel string

	// GoogleChatModel is the chat model for the Google family.
	// Default: "gemini-2.5-flash-lite"
	GoogleChatModel string

	// OpenAIChatModel is the chat model for the OpenAI family.
	// Default: "gpt-5-nano"
	OpenAIChatModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithGoogleAPIKey sets the Google API key.
func WithGoogleAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.GoogleAPIKey = key
	}
}

// WithOpenAIAPIKey sets the OpenAI API key.
func WithOpenAIAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.OpenAIAPIKey = key
	}
}

// WithOpenAIBaseURL points the OpenAI family at a compatible server.
func WithOpenAIBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.OpenAIBaseURL = url
	}
}

// WithGoogleEmbeddingModel sets the Google embedding model.
func WithGoogleEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.GoogleEmbeddingModel = model
	}
}

// WithOpenAIEmbeddingModel sets the OpenAI embedding model.
func WithOpenAIEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.OpenAIEmbeddingModel = model
	}
}

// WithGoogleChatModel sets the Google chat model. An empty value keeps the default.
func WithGoogleChatModel(model string) ConfigOption {
	return func(c *Config) {
		if model != "" {
			c.GoogleChatModel = model
		}
	}
}

// WithOpenAIChatModel sets the OpenAI chat model. An empty value keeps the default.
func WithOpenAIChatModel(model string) ConfigOption {
	return func(c *Config) {
		if model != "" {
			c.OpenAIChatModel = model
		}
	}
}

// DefaultConfig returns a Config with the default chat models and no credentials.
func DefaultConfig() *Config {
	return &Config{
		GoogleChatModel: DefaultGoogleChatModel,
		OpenAIChatModel: DefaultOpenAIChatModel,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithOpenAIAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    WithOpenAIEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims surrounding whitespace from the endpoint and model names.
// API keys are left as given.
func (c *Config) Normalize() {
	c.OpenAIBaseURL = strings.TrimSuffix(strings.TrimSpace(c.OpenAIBaseURL), "/")
	c.GoogleEmbeddingModel = strings.TrimSpace(c.GoogleEmbeddingModel)
	c.OpenAIEmbeddingModel = strings.TrimSpace(c.OpenAIEmbeddingModel)
	c.GoogleChatModel = strings.TrimSpace(c.GoogleChatModel)
	c.OpenAIChatModel = strings.TrimSpace(c.OpenAIChatModel)
}

// EmbeddingModel returns the embedding model of the selected family.
func (c *Config) EmbeddingModel(kind ProviderKind) string {
	if kind == ProviderGoogle {
		return c.GoogleEmbeddingModel
	}
	return c.OpenAIEmbeddingModel
}

// ChatModel returns the chat model of the selected family.
func (c *Config) ChatModel(kind ProviderKind) string {
	if kind == ProviderGoogle {
		return c.GoogleChatModel
	}
	return c.OpenAIChatModel
}

// Validate checks that a provider can be selected and that it has a chat model.
// It normalizes the configuration first.
//
// Embedding model names are not checked: an empty name lets the client
// library use its own default.
func (c *Config) Validate() error {
	c.Normalize()

	kind, err := SelectProvider(c)
	if err != nil {
		return err
	}
	if c.ChatModel(kind) == "" {
		return errors.New("ai config: chat model is required")
	}
	return nil
}
