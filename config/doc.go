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


// Package config builds the explicit configuration shared by the ingest and
// chat commands from the process environment and an optional .env file.
//
// Validation is ordered so the first missing setting is the one reported:
// provider credentials, DATABASE_URL, PG_VECTOR_COLLECTION_NAME and, for
// ingestion, PDF_PATH.
package config
