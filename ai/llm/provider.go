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


package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/pdfrag/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// client is what both langchaingo families offer: chat generation and
// embedding creation from a single handle.
type client interface {
	llms.Model
	embeddings.EmbedderClient
}

// Provider implements ai.AIProvider for the family chosen by ai.SelectProvider.
// The embedder and chat model share one underlying client.
type Provider struct {
	kind     ai.ProviderKind
	embedder *Embedder
	chat     *ChatModel
	closer   func() error
	logger   *slog.Logger
}

// NewProvider validates config, selects the provider family and builds its client.
// No network traffic happens here; the first request is made on first use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if config == nil {
		return nil, ai.ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kind, err := ai.SelectProvider(config)
	if err != nil {
		return nil, err
	}

	var (
		c      client
		closer func() error
	)
	switch kind {
	case ai.ProviderGoogle:
		g, err := newGoogleClient(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("creating google client: %w", err)
		}
		c, closer = g, g.Close
	default:
		o, err := newOpenAIClient(config)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		c = o
	}

	p, err := newProvider(kind, c, closer, config.EmbeddingModel(kind), config.ChatModel(kind))
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newProvider(kind ai.ProviderKind, c client, closer func() error, embeddingModel, chatModel string) (*Provider, error) {
	embedder, err := newEmbedder(c, embeddingModel, kind)
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}

	chat, err := newChatModel(c, chatModel, kind)
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}

	p := &Provider{
		kind:     kind,
		embedder: embedder,
		chat:     chat,
		closer:   closer,
		logger:   slog.Default().With("component", kind.String()+"-provider"),
	}
	p.logger.Debug("provider ready", "embedding_model", embeddingModel, "chat_model", chatModel)
	return p, nil
}

func newGoogleClient(ctx context.Context, config *ai.Config) (*googleai.GoogleAI, error) {
	opts := []googleai.Option{
		googleai.WithAPIKey(config.GoogleAPIKey),
		googleai.WithDefaultModel(config.GoogleChatModel),
	}
	if config.GoogleEmbeddingModel != "" {
		opts = append(opts, googleai.WithDefaultEmbeddingModel(config.GoogleEmbeddingModel))
	}
	return googleai.New(ctx, opts...)
}

func newOpenAIClient(config *ai.Config) (*openai.LLM, error) {
	opts := []openai.Option{
		openai.WithToken(config.OpenAIAPIKey),
		openai.WithModel(config.OpenAIChatModel),
	}
	if config.OpenAIEmbeddingModel != "" {
		opts = append(opts, openai.WithEmbeddingModel(config.OpenAIEmbeddingModel))
	}
	if config.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.OpenAIBaseURL))
	}
	return openai.New(opts...)
}

// Kind reports the provider family.
func (p *Provider) Kind() ai.ProviderKind {
	return p.kind
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// ChatModel returns the chat completion service.
func (p *Provider) ChatModel() ai.ChatModel {
	return p.chat
}

// Close releases the underlying client. The OpenAI client holds no resources.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider")
	if p.closer != nil {
		return p.closer()
	}
	return nil
}
