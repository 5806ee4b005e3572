package badger

import (
	"fmt"
)

// Key prefixes for different data types
const (
	chunkPrefix     = "chunk"
	embeddingPrefix = "embed"
)

// makeChunkPrefix returns the key prefix shared by every chunk of a collection.
// The collection name is length-prefixed so that no collection's prefix is a
// prefix of another's.
// Format: chunk:<len>:<collection>:
func makeChunkPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s:", chunkPrefix, len(collection), collection))
}

// makeChunkKey generates the key for a chunk by collection and ID.
// Format: chunk:<len>:<collection>:<id>
func makeChunkKey(collection, id string) []byte {
	prefix := makeChunkPrefix(collection)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id)
	return buf
}

// makeEmbeddingKey generates the key for a cached embedding by content digest.
// Format: embed:<digest>
func makeEmbeddingKey(digest []byte) []byte {
	buf := make([]byte, len(embeddingPrefix)+1+len(digest))
	offset := copy(buf, embeddingPrefix+":")
	copy(buf[offset:], digest)
	return buf
}
