package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pdfrag/storage"
)

// EmbeddingStore persists embedding vectors keyed by a content digest.
// It backs the embedding cache so re-ingesting an unchanged document does not
// pay for the same embeddings twice.
type EmbeddingStore struct {
	backend *Backend
}

// NewEmbeddingStore creates an embedding store on an open backend.
func NewEmbeddingStore(backend *Backend) (*EmbeddingStore, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	return &EmbeddingStore{backend: backend}, nil
}

// GetEmbeddings looks up vectors for digests. The result has one entry per
// digest; misses are nil.
func (e *EmbeddingStore) GetEmbeddings(ctx context.Context, digests [][]byte) ([][]float32, error) {
	out := make([][]float32, len(digests))
	err := e.backend.WithTx(func(tx *badger.Txn) error {
		for i, digest := range digests {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeEmbeddingKey(digest))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				vector, err := decodeVector(val)
				out[i] = vector
				return err
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutEmbeddings stores vectors under the matching digests.
func (e *EmbeddingStore) PutEmbeddings(ctx context.Context, digests [][]byte, vectors [][]float32) error {
	if len(digests) != len(vectors) {
		return fmt.Errorf("%w: %d digests, %d vectors", storage.ErrInvalidQuery, len(digests), len(vectors))
	}
	wb := e.backend.db.NewWriteBatch()
	defer wb.Cancel()
	for i := range digests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Set(makeEmbeddingKey(digests[i]), encodeVector(vectors[i])); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// encodeVector packs a vector as little-endian float32 values.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: vector length %d", storage.ErrSerializationFailed, len(data))
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vector, nil
}
