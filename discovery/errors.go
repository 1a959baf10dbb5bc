// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package discovery

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientEvidence indicates a term has too few published studies
	// to be indexed.
	ErrInsufficientEvidence = errors.New("insufficient evidence")

	// ErrSupplementRepositoryRequired is returned when a supplement repository is not provided.
	ErrSupplementRepositoryRequired = errors.New("supplement repository required")

	// ErrOracleRequired is returned when an evidence oracle is not provided.
	ErrOracleRequired = errors.New("evidence oracle required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrQueueRequired is returned when a discovery queue is not provided.
	ErrQueueRequired = errors.New("discovery queue required")

	// ErrControllerRequired is returned when a discovery controller is not provided.
	ErrControllerRequired = errors.New("discovery controller required")
)

// InsufficientEvidenceError reports how far a term fell short of the
// study-count gate.
type InsufficientEvidenceError struct {
	StudyCount int
	MinStudies int
}

func (e *InsufficientEvidenceError) Error() string {
	return fmt.Sprintf("insufficient evidence: %d studies found (minimum: %d)", e.StudyCount, e.MinStudies)
}

func (e *InsufficientEvidenceError) Unwrap() error {
	return ErrInsufficientEvidence
}
