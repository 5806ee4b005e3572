package core

import (
	"errors"
	"math"
	"testing"
)

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name:    "valid chunk",
			chunk:   &Chunk{ID: "doc-0", Content: "hello", Vector: []float32{0.1}},
			wantErr: nil,
		},
		{
			name:    "valid chunk with empty content",
			chunk:   &Chunk{ID: "doc-1", Vector: []float32{0.1}},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name:    "empty id",
			chunk:   &Chunk{Content: "hello", Vector: []float32{0.1}},
			wantErr: ErrEmptyChunkID,
		},
		{
			name:    "missing vector",
			chunk:   &Chunk{ID: "doc-2", Content: "hello"},
			wantErr: ErrMissingVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidChunk) {
				t.Errorf("ValidateChunk() error = %v, should wrap ErrInvalidChunk", err)
			}
		})
	}
}

func TestValidateChunks(t *testing.T) {
	chunks := []*Chunk{
		{ID: "doc-0", Vector: []float32{1}},
		{ID: "", Vector: []float32{1}},
	}
	if err := ValidateChunks(chunks); !errors.Is(err, ErrEmptyChunkID) {
		t.Errorf("ValidateChunks() error = %v, want %v", err, ErrEmptyChunkID)
	}
	if err := ValidateChunks(chunks[:1]); err != nil {
		t.Errorf("ValidateChunks() unexpected error = %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "scaled", a: []float32{1, 1}, b: []float32{3, 3}, want: 1},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineSimilarity() unexpected error = %v", err)
			}
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
