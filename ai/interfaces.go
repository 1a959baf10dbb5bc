package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector has the provider's configured dimension and is
	// normalized for cosine similarity.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryRewriter canonicalizes and expands supplement queries.
// Implementations must be thread-safe for concurrent use.
type QueryRewriter interface {
	// Normalize translates a query to its canonical English supplement name:
	// a single bare term, with symptom or goal phrases resolved to the
	// best-evidenced supplement. Implementations degrade silently: if the
	// language model is unavailable the original query is returned unchanged.
	Normalize(ctx context.Context, query string) (string, error)

	// Expand returns up to four alternate search terms for a query, ordered
	// by relevance: scientific name, abbreviation expansions, synonyms, with
	// the original term last. On failure or malformed model output the
	// result is a single-element list containing the original query.
	Expand(ctx context.Context, query string) ([]string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and QueryRewriter instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QueryRewriter returns the query normalization and expansion service.
	// The returned QueryRewriter is safe for concurrent use.
	QueryRewriter() QueryRewriter

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
