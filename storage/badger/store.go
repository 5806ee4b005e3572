package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/storage"
)

// Store implements storage.VectorStore on a BadgerDB backend.
// Similarity search is a full scan of the collection, which is adequate for
// the single-document collections this store is meant for.
type Store struct {
	backend     *Backend
	collection  string
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// withOwnedBackend makes Close also close the backend.
func withOwnedBackend() Option {
	return func(s *Store) error {
		s.ownsBackend = true
		return nil
	}
}

// NewStore creates a vector store for collection on an open backend.
// The caller keeps ownership of backend.
func NewStore(backend *Backend, collection string, opts ...Option) (storage.VectorStore, error) {
	return newStore(backend, collection, opts...)
}

func newStore(backend *Backend, collection string, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if collection == "" {
		return nil, storage.ErrCollectionRequired
	}

	s := &Store{
		backend:    backend,
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "badger-store", "collection", collection)
	return s, nil
}

// Open opens (or creates) a BadgerDB database at path and returns a store for
// collection. The store owns the database and closes it on Close.
func Open(path string, inMemory bool, collection string, opts ...Option) (storage.VectorStore, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	s, err := newStore(backend, collection, append(opts, withOwnedBackend())...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return s, nil
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// Upsert writes chunks keyed by ID, replacing existing entries.
// Large inputs are split across transactions when badger reports the
// transaction is too big; each chunk is written exactly once.
func (s *Store) Upsert(ctx context.Context, chunks ...*core.Chunk) (storage.UpsertResult, error) {
	var result storage.UpsertResult
	if len(chunks) == 0 {
		return result, nil
	}
	if s.backend.IsClosed() {
		return result, storage.ErrStorageClosed
	}
	if err := core.ValidateChunks(chunks); err != nil {
		return result, err
	}

	tx := s.backend.NewTransaction(true)
	defer func() { tx.Discard() }()

	var pending storage.UpsertResult
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		key := makeChunkKey(s.collection, chunk.ID)
		value, err := storage.MarshalChunk(chunk)
		if err != nil {
			return result, err
		}

		replaced, err := exists(tx, key)
		if err != nil {
			return result, err
		}

		err = tx.Set(key, value)
		if errors.Is(err, badger.ErrTxnTooBig) {
			if err := tx.Commit(); err != nil {
				return result, err
			}
			result.Add(pending)
			pending = storage.UpsertResult{}

			tx = s.backend.NewTransaction(true)
			if replaced, err = exists(tx, key); err != nil {
				return result, err
			}
			err = tx.Set(key, value)
		}
		if err != nil {
			return result, fmt.Errorf("writing chunk %s: %w", chunk.ID, err)
		}

		if replaced {
			pending.Replaced++
		} else {
			pending.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return result, err
	}
	result.Add(pending)

	s.logger.Debug("upserted chunks", "inserted", result.Inserted, "replaced", result.Replaced)
	return result, nil
}

func exists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindSimilar finds the chunks most similar to vector by cosine similarity.
// Chunks whose vector length differs from the query are skipped.
func (s *Store) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var results []*core.SearchResult
	skipped := 0

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(s.collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}

			score, err := core.CosineSimilarity(vector, chunk.Vector)
			if err != nil {
				skipped++
				continue
			}

			results = append(results, &core.SearchResult{
				Chunk: chunk,
				Score: score,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		s.logger.Warn("skipped chunks with mismatched vector dimensions", "skipped", skipped, "dimensions", len(vector))
	}

	// Sort by similarity descending; ties keep id order for stable output
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Close closes the backend if this store opened it.
func (s *Store) Close() error {
	if s.ownsBackend {
		return s.backend.Close()
	}
	return nil
}
