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


// Package pgvector stores chunks in PostgreSQL using the pgvector extension.
//
// The tables follow the langchain_postgres layout (langchain_pg_collection and
// langchain_pg_embedding), so a collection ingested here can be queried by
// other tools that read that layout and vice versa. Search ranks rows by
// cosine distance and reports 1 - distance as the score.
package pgvector
