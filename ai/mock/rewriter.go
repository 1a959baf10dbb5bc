package mock

import (
	"context"
	"strings"
)

// MockQueryRewriter is a test double for ai.QueryRewriter.
// It allows custom behavior injection via function fields.
type MockQueryRewriter struct {
	// NormalizeFunc is called by Normalize if set.
	// If nil, uses default lowercase-trim behavior.
	NormalizeFunc func(ctx context.Context, query string) (string, error)

	// ExpandFunc is called by Expand if set.
	// If nil, returns the query as the only candidate term.
	ExpandFunc func(ctx context.Context, query string) ([]string, error)

	callCount int
}

// NewMockQueryRewriter creates a mock rewriter with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockRewriter().
func NewMockQueryRewriter() *MockQueryRewriter {
	return &MockQueryRewriter{}
}

// Normalize returns the query lowercased and trimmed.
// This keeps tests deterministic without a language model.
func (m *MockQueryRewriter) Normalize(ctx context.Context, query string) (string, error) {
	m.callCount++

	if m.NormalizeFunc != nil {
		return m.NormalizeFunc(ctx, query)
	}

	return strings.ToLower(strings.TrimSpace(query)), nil
}

// Expand returns the query as the sole candidate term.
func (m *MockQueryRewriter) Expand(ctx context.Context, query string) ([]string, error) {
	m.callCount++

	if m.ExpandFunc != nil {
		return m.ExpandFunc(ctx, query)
	}

	return []string{query}, nil
}

// CallCount returns the number of times any method was called.
func (m *MockQueryRewriter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockQueryRewriter) Reset() {
	m.callCount = 0
	m.NormalizeFunc = nil
	m.ExpandFunc = nil
}
