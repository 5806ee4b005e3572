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


package ingestion

import (
	"github.com/poiesic/pdfrag/core"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the number of characters shared by neighbouring chunks.
	DefaultChunkOverlap = 150
)

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks page documents into overlapping chunks, preferring the
// largest structural boundary that keeps a chunk under the target size.
// Lengths are counted in runes.
type Splitter struct {
	splitter textsplitter.RecursiveCharacter
}

// NewSplitter creates a recursive character splitter.
func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, ErrInvalidChunking
	}
	return &Splitter{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(DefaultSeparators),
		),
	}, nil
}

// NewDefaultSplitter creates a splitter with DefaultChunkSize and DefaultChunkOverlap.
func NewDefaultSplitter() *Splitter {
	s, _ := NewSplitter(DefaultChunkSize, DefaultChunkOverlap)
	return s
}

// Split returns the chunks of docs in document order. Each chunk gets its
// own copy of the source document's metadata.
func (s *Splitter) Split(docs []core.Document) ([]core.Document, error) {
	in := make([]schema.Document, len(docs))
	for i, doc := range docs {
		in[i] = schema.Document{PageContent: doc.Content, Metadata: doc.Metadata}
	}

	out, err := textsplitter.SplitDocuments(s.splitter, in)
	if err != nil {
		return nil, err
	}

	splits := make([]core.Document, len(out))
	for i, doc := range out {
		metadata := make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		splits[i] = core.Document{Content: doc.PageContent, Metadata: metadata}
	}
	return splits, nil
}
