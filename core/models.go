package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// Metadata keys attached to documents and chunks by the loader.
const (
	MetadataSource     = "source"
	MetadataPage       = "page"
	MetadataTotalPages = "total_pages"
)

// Document is a page-level unit of text extracted from a source file.
type Document struct {
	Content  string
	Metadata map[string]any
}

// Chunk is a bounded span of document text stored in a vector collection.
// Chunks are keyed by ID; writing a chunk whose ID already exists replaces it.
type Chunk struct {
	ID       string
	Content  string
	Metadata map[string]any
	Vector   []float32 // Embedding vector (populated during ingestion)
}

// SearchResult pairs a stored chunk with its similarity to a query.
// Score is cosine similarity, so higher is closer.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// ChunkID returns the identifier for the chunk at position index of a single
// ingestion run: "doc-0", "doc-1", ...
func ChunkID(index int) string {
	return fmt.Sprintf("doc-%d", index)
}

// NamespacedChunkID prefixes ChunkID with a slug of the source file's base name,
// so chunks of different documents cannot collide: "manual-doc-0".
// An empty source falls back to ChunkID.
func NamespacedChunkID(source string, index int) string {
	slug := slugify(strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)))
	if slug == "" {
		return ChunkID(index)
	}
	return slug + "-" + ChunkID(index)
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
