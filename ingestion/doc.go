// Package ingestion loads a PDF into a vector collection.
//
// A Pipeline run extracts page documents, splits them into overlapping
// chunks of at most 1000 characters, removes empty metadata, assigns
// ordinal ids ("doc-0", "doc-1", ...), embeds the chunks in batches and
// upserts them. Re-ingesting reuses the same ids, so earlier chunks with
// matching ids are replaced and counted in the Report.
//
// Batches run on an ants worker pool. Failed batches are retried only when
// WithMaxAttempts is greater than one.
package ingestion
