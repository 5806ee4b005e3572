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


package core

import (
	"fmt"
	"math"
)

// ValidateChunk validates a Chunk before it is written to a vector store.
//
// Validation rules:
//   - ID must not be empty
//   - Vector must not be empty
//
// NOT validated:
//   - Content (empty pages are filtered by the loader, but a store accepts them)
//   - Metadata (free-form)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkID)
	}
	if len(chunk.Vector) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidChunk, chunk.ID, ErrMissingVector)
	}
	return nil
}

// ValidateChunks validates every chunk and returns the first error found.
func ValidateChunks(chunks []*Chunk) error {
	for _, chunk := range chunks {
		if err := ValidateChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Zero-length vectors have similarity 0.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
