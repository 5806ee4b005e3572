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


// Package llm provides AI service implementations backed by langchaingo.
//
// NewProvider selects the Google (googleai) or OpenAI (openai) family with
// ai.SelectProvider and builds one client for it. The same client serves
// embeddings, wrapped by langchaingo's embeddings.NewEmbedder, and chat
// completion through llms.GenerateFromSinglePrompt.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithGoogleAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	    ai.WithGoogleEmbeddingModel("models/embedding-001"),
//	)
//
//	provider, err := llm.NewProvider(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//	answer, err := provider.ChatModel().Complete(ctx, prompt)
package llm
