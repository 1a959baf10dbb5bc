package pipeline

import (
	"github.com/poiesic/evidentia/core"
)

// Source identifies which tier of the pipeline answered a query.
type Source string

const (
	// SourceCache means the answer came from the query result cache.
	SourceCache Source = "cache"

	// SourceSearch means the answer came from vector search.
	SourceSearch Source = "search"

	// SourceDiscovery means the answer was discovered and indexed during
	// this request.
	SourceDiscovery Source = "discovery"
)

// MissReason explains why a query could not be resolved.
type MissReason string

const (
	// ReasonNoMatch means nothing in the catalog was close enough.
	ReasonNoMatch MissReason = "no_match"

	// ReasonInsufficientEvidence means the term was evaluated but has too
	// few published studies to be admitted.
	ReasonInsufficientEvidence MissReason = "insufficient_studies"
)

// Request is a supplement lookup.
type Request struct {
	// Query is the raw user query, any language.
	Query string

	// Limit caps how many matches are returned on the search path.
	// Zero means DefaultLimit.
	Limit int
}

// Result is the outcome of resolving a request through the pipeline.
type Result struct {
	// Query echoes the raw query.
	Query string

	// Found reports whether a supplement was resolved.
	Found bool

	// Source is where the answer came from. Empty on a miss.
	Source Source

	// Matches holds the resolved matches, best first. Cache and discovery
	// answers carry exactly one.
	Matches []*core.SupplementMatch

	// Enqueued is set on a miss that was queued for background discovery.
	Enqueued bool

	// Reason explains a miss. Empty when Found.
	Reason MissReason

	// StudyCount carries the oracle's study count when a miss was caused
	// by insufficient evidence.
	StudyCount int

	// BestSimilarity is the closest sub-threshold similarity seen on a
	// miss. Zero when nothing was remotely close.
	BestSimilarity float32
}

// Best returns the top match, nil on a miss.
func (r *Result) Best() *core.SupplementMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return r.Matches[0]
}
