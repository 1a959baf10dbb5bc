package evidence

import (
	"context"

	"github.com/poiesic/evidentia/core"
)

// MockOracle is a test double for Oracle.
// It allows custom behavior injection via function fields.
type MockOracle struct {
	// StudyCountFunc is called by StudyCount if set.
	// If nil, returns a fixed well-evidenced count.
	StudyCountFunc func(ctx context.Context, term string) (*core.EvidenceCount, error)

	callCount int
}

// NewMockOracle creates a mock oracle with default behavior.
func NewMockOracle() *MockOracle {
	return &MockOracle{}
}

// StudyCount returns a fixed count of 150 studies unless StudyCountFunc is set.
func (m *MockOracle) StudyCount(ctx context.Context, term string) (*core.EvidenceCount, error) {
	m.callCount++

	if m.StudyCountFunc != nil {
		return m.StudyCountFunc(ctx, term)
	}

	return &core.EvidenceCount{
		Count:       150,
		OracleQuery: BuildQuery(term),
	}, nil
}

// CallCount returns the number of times StudyCount was called.
func (m *MockOracle) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom function.
func (m *MockOracle) Reset() {
	m.callCount = 0
	m.StudyCountFunc = nil
}
