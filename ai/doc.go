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


// Package ai provides abstractions for the AI services used by pdfrag.
//
// This package defines interfaces for text embeddings and chat completion,
// plus the provider-selection rule shared by ingestion and chat. The rest of
// the module depends on these abstractions rather than on a concrete client.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - ChatModel: Completes a rendered prompt
//   - AIProvider: Aggregates both services for one provider family
//
// # Provider Selection
//
// Two families are supported, Google (Gemini) and OpenAI. SelectProvider is a
// pure function of the credentials in a Config: a present Google key always
// wins, otherwise the OpenAI key is used, otherwise ErrNoCredentials.
// Embeddings and chat always come from the same family, so vectors written
// during ingestion are comparable with query vectors computed during chat.
//
// # Implementation Packages
//
//   - ai/llm: Production implementation backed by langchaingo clients
//   - ai/cache: Persistent embedding cache that decorates any Embedder
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Production constructors (llm.NewProvider) return interface types.
// Test constructors (mock.NewMockEmbedder, mock.NewMockChatModel) return
// concrete types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithOpenAIAPIKey(key), ai.WithOpenAIEmbeddingModel("text-embedding-3-small"))
//	provider, err := llm.NewProvider(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Hello world")
//	answer, err := provider.ChatModel().Complete(ctx, "Say hi")
package ai
