package pipeline

import "errors"

var (
	// ErrEngineRequired is returned when a search engine is not provided.
	ErrEngineRequired = errors.New("search engine required")
)
