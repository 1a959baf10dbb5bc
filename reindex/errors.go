package reindex

import "errors"

var (
	// ErrInvalidAttempts is returned for a retry budget of zero or less.
	ErrInvalidAttempts = errors.New("retry attempts must be greater than 0")
)
