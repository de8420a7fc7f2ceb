// Package reindex provides functionality for re-embedding the stored
// knowledge base with a new or updated embedding model.
//
// This package supports batch processing of chunks on a worker pool,
// progress tracking, retry logic with exponential backoff, and vector
// normalization to ensure compatibility with cosine similarity search.
package reindex
