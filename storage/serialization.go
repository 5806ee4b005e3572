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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/pdfrag/core"
)

// chunkRecord is the persisted form of a chunk.
type chunkRecord struct {
	ID       string         `json:"id"`
	Content  string         `json:"document"`
	Metadata map[string]any `json:"cmetadata,omitempty"`
	Vector   []float32      `json:"embedding"`
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	data, err := json.Marshal(chunkRecord{
		ID:       chunk.ID,
		Content:  chunk.Content,
		Metadata: chunk.Metadata,
		Vector:   chunk.Vector,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a Chunk from bytes.
// JSON numbers in metadata decode as float64.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var record chunkRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &core.Chunk{
		ID:       record.ID,
		Content:  record.Content,
		Metadata: record.Metadata,
		Vector:   record.Vector,
	}, nil
}
