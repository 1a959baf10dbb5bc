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


package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

const (
	// DefaultSimilarityThreshold is the minimum similarity for a match to
	// count as a hit.
	DefaultSimilarityThreshold = 0.85

	// DefaultEarlyStopThreshold is the similarity at which term iteration
	// stops: a match this close will not be beaten by a rephrasing.
	DefaultEarlyStopThreshold = 0.95
)

// Resolution is the outcome of resolving a query against the index.
type Resolution struct {
	// Match is the winning match, nil if nothing cleared the threshold.
	Match *core.SupplementMatch

	// Term is the expansion term that produced the match.
	Term string

	// Terms is every term that was tried, in order.
	Terms []string

	// BestSimilarity is the highest similarity seen across all terms,
	// including sub-threshold ones. Useful for diagnostics on misses.
	BestSimilarity float32
}

// Found reports whether the resolution produced a usable match.
func (r *Resolution) Found() bool {
	return r.Match != nil
}

// Engine resolves free-text queries to indexed supplement records using
// vector similarity over LLM-expanded term candidates.
type Engine struct {
	supplements storage.SupplementRepository
	embedder    ai.Embedder
	rewriter    ai.QueryRewriter
	threshold   float32
	earlyStop   float32
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithThresholds overrides the similarity and early-stop thresholds.
func WithThresholds(threshold, earlyStop float32) Option {
	return func(e *Engine) error {
		e.threshold = threshold
		e.earlyStop = earlyStop
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(
	supplements storage.SupplementRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Engine, error) {
	if supplements == nil {
		return nil, ErrSupplementRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	e := &Engine{
		supplements: supplements,
		embedder:    provider.Embedder(),
		rewriter:    provider.QueryRewriter(),
		threshold:   DefaultSimilarityThreshold,
		earlyStop:   DefaultEarlyStopThreshold,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Threshold returns the similarity threshold the engine filters at.
func (e *Engine) Threshold() float32 {
	return e.threshold
}

// Search embeds a single term and returns matches above the threshold,
// best first, up to limit.
func (e *Engine) Search(ctx context.Context, term string, limit int) ([]*core.SupplementMatch, error) {
	embedding, err := e.embedder.EmbedText(ctx, term)
	if err != nil {
		e.logger.Error("error generating embedding for term", "term", term, "err", err)
		return nil, err
	}
	return e.supplements.FindSimilar(ctx, embedding, e.threshold, limit)
}

// Resolve resolves a query to its best supplement match.
// Returns (resolution, nil) even on a miss; the caller checks Found().
func (e *Engine) Resolve(ctx context.Context, query string) (*Resolution, error) {
	return e.ResolveWithMonitor(ctx, query, nil)
}

// ResolveWithMonitor resolves a query with monitoring callbacks.
//
// The query is expanded into candidate terms and each term is searched in
// turn. The best match across all terms wins, except that a match at or
// above the early-stop threshold ends the loop immediately.
func (e *Engine) ResolveWithMonitor(ctx context.Context, query string, monitor ResolveMonitor) (*Resolution, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	terms, err := e.rewriter.Expand(ctx, query)
	if err != nil {
		// Expansion degrades, never fails
		e.logger.Warn("expansion failed, searching raw query", "query", query, "err", err)
		terms = []string{query}
	}
	if len(terms) == 0 {
		terms = []string{query}
	}
	monitor.AfterExpansion(terms)

	resolution := &Resolution{Terms: terms}
	var best *core.SupplementMatch
	var bestTerm string

	for _, term := range terms {
		embedding, err := e.embedder.EmbedText(ctx, term)
		if err != nil {
			e.logger.Error("error generating embedding for term", "term", term, "err", err)
			return nil, err
		}

		// Threshold 0 here: sub-threshold similarities still inform
		// BestSimilarity for diagnostics
		matches, err := e.supplements.FindSimilar(ctx, embedding, 0, 1)
		if err != nil {
			e.logger.Error("error querying for similar records", "term", term, "err", err)
			return nil, err
		}
		if len(matches) == 0 {
			monitor.TermSearched(term, nil)
			continue
		}

		candidate := matches[0]
		monitor.TermSearched(term, candidate)

		if candidate.Similarity > resolution.BestSimilarity {
			resolution.BestSimilarity = candidate.Similarity
		}
		if best == nil || candidate.Similarity > best.Similarity {
			best = candidate
			bestTerm = term
		}

		if candidate.Similarity >= e.earlyStop {
			monitor.EarlyStop(term, candidate.Similarity)
			break
		}
	}

	if best != nil && best.Similarity >= e.threshold {
		resolution.Match = best
		resolution.Term = bestTerm
	}

	e.logger.Debug("resolution finished",
		"query", query,
		"found", resolution.Found(),
		"bestSimilarity", resolution.BestSimilarity,
		"terms", len(terms))
	monitor.Finish(resolution)

	return resolution, nil
}
