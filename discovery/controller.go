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
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/evidence"
	"github.com/poiesic/evidentia/storage"
)

const (
	// DefaultMinStudies is the study-count gate below which a term is not
	// worth indexing.
	DefaultMinStudies = 3

	// CategoryAutoDiscovered marks records created by discovery rather
	// than curation.
	CategoryAutoDiscovered = "auto-discovered"

	// PopularityNew is the starting popularity for discovered records.
	PopularityNew = "low"
)

// Outcome is the result of a successful discovery.
type Outcome struct {
	// Record is the newly indexed (or pre-existing) supplement record.
	Record *core.SupplementRecord

	// Created is false when the term was already indexed under the same
	// name and no new record was written.
	Created bool

	// StudyCount is the evidence behind the record.
	StudyCount int
}

// Controller runs the discovery sequence for a single query: establish the
// canonical term, gate on published evidence, grade, and index.
type Controller struct {
	supplements storage.SupplementRepository
	oracle      evidence.Oracle
	embedder    ai.Embedder
	rewriter    ai.QueryRewriter
	minStudies  int
	dimensions  int
	logger      *slog.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller) error

// WithMinStudies overrides the study-count gate.
// Default is DefaultMinStudies.
func WithMinStudies(min int) ControllerOption {
	return func(c *Controller) error {
		if min > 0 {
			c.minStudies = min
		}
		return nil
	}
}

// WithDimensions sets the embedding dimension new records are validated
// against before indexing. Default is ai.DefaultEmbeddingDimensions.
func WithDimensions(dim int) ControllerOption {
	return func(c *Controller) error {
		if dim > 0 {
			c.dimensions = dim
		}
		return nil
	}
}

// WithControllerLogger sets a custom logger.
// Default is slog.Default().
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewController creates a new discovery controller.
func NewController(
	supplements storage.SupplementRepository,
	oracle evidence.Oracle,
	provider ai.AIProvider,
	opts ...ControllerOption,
) (*Controller, error) {
	if supplements == nil {
		return nil, ErrSupplementRepositoryRequired
	}
	if oracle == nil {
		return nil, ErrOracleRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	c := &Controller{
		supplements: supplements,
		oracle:      oracle,
		embedder:    provider.Embedder(),
		rewriter:    provider.QueryRewriter(),
		minStudies:  DefaultMinStudies,
		dimensions:  ai.DefaultEmbeddingDimensions,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MinStudies returns the study-count gate.
func (c *Controller) MinStudies() int {
	return c.minStudies
}

// Discover validates a query against the literature and indexes it.
//
// Returns ErrInsufficientEvidence (as *InsufficientEvidenceError) when the
// term falls below the study gate. A term already indexed under its
// canonical name is returned as-is with Created=false rather than
// duplicated.
func (c *Controller) Discover(ctx context.Context, query string) (*Outcome, error) {
	// Normalization degrades to the raw query on model failure
	normalized, err := c.rewriter.Normalize(ctx, query)
	if err != nil || normalized == "" {
		normalized = query
	}

	count, err := c.oracle.StudyCount(ctx, normalized)
	if err != nil {
		c.logger.Warn("oracle lookup failed", "query", query, "term", normalized, "err", err)
		return nil, err
	}

	if count.Count < c.minStudies {
		c.logger.Info("discovery rejected",
			"query", query,
			"term", normalized,
			"studies", count.Count,
			"minimum", c.minStudies)
		return nil, &InsufficientEvidenceError{StudyCount: count.Count, MinStudies: c.minStudies}
	}

	grade := core.GradeForStudyCount(count.Count)

	// The canonical name may already be indexed under a different raw query
	existing, err := c.supplements.FindByName(ctx, normalized)
	if err == nil {
		c.logger.Debug("term already indexed", "term", normalized, "id", existing.Id)
		return &Outcome{Record: existing, Created: false, StudyCount: count.Count}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	vector, err := c.embedder.EmbedText(ctx, normalized)
	if err != nil {
		return nil, err
	}

	record := &core.SupplementRecord{
		Name:   normalized,
		Vector: vector,
		Metadata: core.SupplementMetadata{
			Category:    CategoryAutoDiscovered,
			Popularity:  PopularityNew,
			Grade:       grade,
			StudyCount:  count.Count,
			OracleQuery: count.OracleQuery,
		},
	}

	// A vector of the wrong length would silently never match in
	// similarity search
	if err := core.ValidateRecord(record, c.dimensions); err != nil {
		return nil, err
	}

	added, err := c.supplements.AddSupplements(ctx, record)
	if err != nil {
		// Lost a race with a concurrent discovery of the same term
		if errors.Is(err, storage.ErrDuplicateKey) {
			existing, findErr := c.supplements.FindByName(ctx, normalized)
			if findErr == nil {
				return &Outcome{Record: existing, Created: false, StudyCount: count.Count}, nil
			}
		}
		return nil, err
	}

	c.logger.Info("supplement discovered",
		"query", query,
		"name", normalized,
		"id", added[0].Id,
		"grade", grade,
		"studies", count.Count)

	return &Outcome{Record: added[0], Created: true, StudyCount: count.Count}, nil
}
