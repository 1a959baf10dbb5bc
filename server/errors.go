package server

import "errors"

var (
	// ErrResolverRequired is returned when a pipeline resolver is not provided.
	ErrResolverRequired = errors.New("pipeline resolver required")

	// ErrSupplementRepositoryRequired is returned when a supplement repository is not provided.
	ErrSupplementRepositoryRequired = errors.New("supplement repository required")
)
