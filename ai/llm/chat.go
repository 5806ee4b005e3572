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
	"log/slog"

	"github.com/poiesic/pdfrag/ai"
	"github.com/tmc/langchaingo/llms"
)

// ChatModel implements ai.ChatModel on top of a langchaingo llms.Model.
type ChatModel struct {
	model  llms.Model
	name   string
	logger *slog.Logger
}

var _ ai.ChatModel = (*ChatModel)(nil)

func newChatModel(model llms.Model, name string, kind ai.ProviderKind) (*ChatModel, error) {
	if model == nil {
		return nil, ErrClientRequired
	}
	return &ChatModel{
		model:  model,
		name:   name,
		logger: slog.Default().With("component", kind.String()+"-chat"),
	}, nil
}

// Name returns the chat model name.
func (c *ChatModel) Name() string {
	return c.name
}

// Complete sends prompt as a single human message and returns the answer text.
func (c *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("requesting completion", "model", c.name, "prompt_length", len(prompt))

	answer, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
	if err != nil {
		c.logger.Error("completion failed", "model", c.name, "err", err)
		return "", err
	}

	c.logger.Debug("completion received", "model", c.name, "answer_length", len(answer))
	return answer, nil
}
