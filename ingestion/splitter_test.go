package ingestion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/pdfrag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prose(words int) string {
	return strings.TrimSpace(strings.Repeat("abcd ", words))
}

func TestSplitter_OverlappingChunks(t *testing.T) {
	text := prose(480)
	docs := []core.Document{{
		Content:  text,
		Metadata: map[string]any{core.MetadataPage: 1, core.MetadataSource: "a.pdf"},
	}}

	splits, err := NewDefaultSplitter().Split(docs)
	require.NoError(t, err)
	require.Len(t, splits, 3)

	for _, split := range splits {
		assert.LessOrEqual(t, utf8.RuneCountInString(split.Content), DefaultChunkSize)
		assert.Equal(t, 1, split.Metadata[core.MetadataPage])
		assert.Equal(t, "a.pdf", split.Metadata[core.MetadataSource])
	}

	// Neighbours share a tail of at most DefaultChunkOverlap characters
	for i := 1; i < len(splits); i++ {
		prev := splits[i-1].Content
		tail := prev[len(prev)-(DefaultChunkOverlap-1):]
		assert.True(t, strings.HasPrefix(splits[i].Content, tail), "chunk %d should start with the tail of chunk %d", i, i-1)
	}

	// No word is cut
	for _, split := range splits {
		for _, word := range strings.Fields(split.Content) {
			assert.Equal(t, "abcd", word)
		}
	}
}

func TestSplitter_PrefersParagraphs(t *testing.T) {
	para := func(ch string) string { return strings.Repeat(ch, 600) }
	docs := []core.Document{{Content: para("a") + "\n\n" + para("b") + "\n\n" + para("c")}}

	splits, err := NewDefaultSplitter().Split(docs)
	require.NoError(t, err)
	require.Len(t, splits, 3)
	assert.Equal(t, para("a"), splits[0].Content)
	assert.Equal(t, para("b"), splits[1].Content)
	assert.Equal(t, para("c"), splits[2].Content)
}

func TestSplitter_ShortPageIsOneChunk(t *testing.T) {
	splits, err := NewDefaultSplitter().Split([]core.Document{
		{Content: "page one", Metadata: map[string]any{core.MetadataPage: 1}},
		{Content: "page two", Metadata: map[string]any{core.MetadataPage: 2}},
	})
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.Equal(t, "page one", splits[0].Content)
	assert.Equal(t, 2, splits[1].Metadata[core.MetadataPage])
}

func TestSplitter_MetadataIsCopied(t *testing.T) {
	metadata := map[string]any{core.MetadataPage: 1}
	splits, err := NewDefaultSplitter().Split([]core.Document{{Content: prose(400), Metadata: metadata}})
	require.NoError(t, err)
	require.Greater(t, len(splits), 1)

	splits[0].Metadata["extra"] = true
	assert.NotContains(t, splits[1].Metadata, "extra")
	assert.NotContains(t, metadata, "extra")
}

func TestSplitter_Empty(t *testing.T) {
	splits, err := NewDefaultSplitter().Split([]core.Document{{Content: "   "}})
	require.NoError(t, err)
	assert.Empty(t, splits)
}

func TestNewSplitter_Validation(t *testing.T) {
	_, err := NewSplitter(100, 100)
	require.ErrorIs(t, err, ErrInvalidChunking)

	_, err = NewSplitter(0, 0)
	require.ErrorIs(t, err, ErrInvalidChunking)

	_, err = NewSplitter(100, -1)
	require.ErrorIs(t, err, ErrInvalidChunking)

	s, err := NewSplitter(10, 2)
	require.NoError(t, err)
	splits, err := s.Split([]core.Document{{Content: "one two three four five"}})
	require.NoError(t, err)
	assert.Greater(t, len(splits), 1)
}
