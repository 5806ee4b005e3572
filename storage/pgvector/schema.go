package pgvector

// Table layout shared with langchain_postgres, so collections written by either
// implementation can be read by the other.
const (
	collectionTable = "langchain_pg_collection"
	embeddingTable  = "langchain_pg_embedding"

	// schemaLockKey serializes concurrent schema creation across processes.
	schemaLockKey = 1573678846307946496
)

const lockSQL = `SELECT pg_advisory_xact_lock($1)`

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS ` + collectionTable + ` (
		uuid uuid PRIMARY KEY,
		name varchar NOT NULL UNIQUE,
		cmetadata json
	)`,
	`CREATE TABLE IF NOT EXISTS ` + embeddingTable + ` (
		id varchar PRIMARY KEY,
		collection_id uuid REFERENCES ` + collectionTable + ` (uuid) ON DELETE CASCADE,
		embedding vector,
		document varchar,
		cmetadata jsonb
	)`,
	`CREATE INDEX IF NOT EXISTS ix_cmetadata_gin ON ` + embeddingTable + ` USING gin (cmetadata jsonb_path_ops)`,
}

const insertCollectionSQL = `INSERT INTO ` + collectionTable + ` (uuid, name, cmetadata)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO NOTHING`

const selectCollectionSQL = `SELECT uuid FROM ` + collectionTable + ` WHERE name = $1`

// upsertSQL reports whether the row was inserted: xmax is 0 for a fresh tuple
// and non-zero when ON CONFLICT updated an existing one.
const upsertSQL = `INSERT INTO ` + embeddingTable + ` (id, collection_id, embedding, document, cmetadata)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
	collection_id = EXCLUDED.collection_id,
	embedding = EXCLUDED.embedding,
	document = EXCLUDED.document,
	cmetadata = EXCLUDED.cmetadata
RETURNING (xmax = 0) AS inserted`

// searchSQL ranks by cosine distance. Rows whose dimensions differ from the
// query are excluded because <=> rejects mismatched vectors.
const searchSQL = `SELECT e.id, e.document, e.cmetadata, e.embedding <=> $1 AS distance
FROM ` + embeddingTable + ` e
JOIN ` + collectionTable + ` c ON e.collection_id = c.uuid
WHERE c.name = $2 AND vector_dims(e.embedding) = $3
ORDER BY distance
LIMIT $4`
