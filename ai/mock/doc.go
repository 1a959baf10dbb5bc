// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.QueryRewriter,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	embeddings, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockRewriter := mock.NewMockQueryRewriter()
//	mockRewriter.NormalizeFunc = func(ctx context.Context, query string) (string, error) {
//	    return "Magnesium Glycinate", nil
//	}
//
//	// Check call counts
//	count := mockRewriter.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockQueryRewriter: Normalizes by lowercasing, expands to the query itself
//   - MockProvider: Aggregates mock embedder and rewriter
package mock
