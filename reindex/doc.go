// Package reindex provides functionality for re-embedding existing
// supplement records with new or updated embedding models.
//
// This package supports batch processing of supplement records, progress
// tracking, retry logic with exponential backoff, and vector normalization
// to ensure compatibility with cosine similarity search.
package reindex
