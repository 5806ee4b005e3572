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


// Package storage provides the vector store abstraction for pdfrag.
//
// This package defines the VectorStore interface that decouples the
// ingestion and chat pipelines from the backend holding the chunks.
//
// # Backends
//
//   - storage/pgvector: PostgreSQL with the pgvector extension, using the
//     langchain_pg_collection / langchain_pg_embedding table layout
//   - storage/badger: Embedded BadgerDB, on disk or in memory, used for local
//     runs and tests
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.VectorStore interface:
//
//	store, err := pgvector.Open(ctx, url, "documents")  // returns storage.VectorStore
//
// # Semantics
//
// Chunks are keyed by ID. Upsert replaces any existing chunk with the same ID
// and reports how many ids were inserted and how many replaced. FindSimilar
// ranks by cosine similarity, highest first.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
