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


package pgvector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/pdfrag/core"
	"github.com/poiesic/pdfrag/storage"
)

// Store implements storage.VectorStore on PostgreSQL with pgvector.
type Store struct {
	pool       *pgxpool.Pool
	collection string
	logger     *slog.Logger

	mu           sync.Mutex
	collectionID uuid.UUID // zero until the collection row exists
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

// Open connects to the database at connString and ensures the pgvector
// extension and tables exist. The collection row itself is created on the
// first Upsert.
func Open(ctx context.Context, connString, collection string, opts ...Option) (storage.VectorStore, error) {
	if collection == "" {
		return nil, storage.ErrCollectionRequired
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	s := &Store{
		pool:       pool,
		collection: collection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			pool.Close()
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "pgvector-store", "collection", collection)

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach Postgres: %w", err)
	}
	if err := s.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, lockSQL, schemaLockKey); err != nil {
			return err
		}
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

// Collection returns the collection name.
func (s *Store) Collection() string {
	return s.collection
}

// ensureCollection returns the collection uuid, creating the row on first use.
func (s *Store) ensureCollection(ctx context.Context, tx pgx.Tx) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collectionID != uuid.Nil {
		return s.collectionID, nil
	}

	if _, err := tx.Exec(ctx, insertCollectionSQL, uuid.New(), s.collection, map[string]any{}); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, selectCollectionSQL, s.collection).Scan(&id); err != nil {
		return uuid.Nil, err
	}

	s.collectionID = id
	s.logger.Debug("collection ready", "uuid", id)
	return id, nil
}

// Upsert writes chunks in a single transaction keyed by id, replacing
// existing rows.
func (s *Store) Upsert(ctx context.Context, chunks ...*core.Chunk) (storage.UpsertResult, error) {
	var result storage.UpsertResult
	if len(chunks) == 0 {
		return result, nil
	}
	if err := core.ValidateChunks(chunks); err != nil {
		return result, err
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		collectionID, err := s.ensureCollection(ctx, tx)
		if err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}

		batch := &pgx.Batch{}
		for _, chunk := range chunks {
			metadata := chunk.Metadata
			if metadata == nil {
				metadata = map[string]any{}
			}
			batch.Queue(upsertSQL, chunk.ID, collectionID, pgvector.NewVector(chunk.Vector), chunk.Content, metadata)
		}

		br := tx.SendBatch(ctx, batch)
		for _, chunk := range chunks {
			var inserted bool
			if err := br.QueryRow().Scan(&inserted); err != nil {
				br.Close()
				return fmt.Errorf("writing chunk %s: %w", chunk.ID, err)
			}
			if inserted {
				result.Inserted++
			} else {
				result.Replaced++
			}
		}
		return br.Close()
	})
	if err != nil {
		// The collection insert rolled back with the transaction.
		s.resetCollection()
		return storage.UpsertResult{}, err
	}

	s.logger.Debug("upserted chunks", "inserted", result.Inserted, "replaced", result.Replaced)
	return result, nil
}

func (s *Store) resetCollection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectionID = uuid.Nil
}

// FindSimilar returns up to limit chunks ordered by cosine distance.
// Score is reported as cosine similarity (1 - distance).
func (s *Store) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 || len(vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	rows, err := s.pool.Query(ctx, searchSQL, pgvector.NewVector(vector), s.collection, len(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*core.SearchResult, 0, limit)
	for rows.Next() {
		var (
			chunk    core.Chunk
			document *string
			distance float64
		)
		if err := rows.Scan(&chunk.ID, &document, &chunk.Metadata, &distance); err != nil {
			return nil, err
		}
		if document != nil {
			chunk.Content = *document
		}
		results = append(results, &core.SearchResult{
			Chunk: &chunk,
			Score: float32(1 - distance),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// IsURL reports whether raw looks like a PostgreSQL connection string:
// a postgres:// or postgresql:// URL, or a key=value DSN.
func IsURL(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	return !strings.Contains(lower, "://") && strings.Contains(lower, "=")
}
