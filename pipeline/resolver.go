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


package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/discovery"
	"github.com/poiesic/evidentia/search"
	"github.com/poiesic/evidentia/storage"
)

// DefaultLimit is the match cap when a request doesn't set one.
const DefaultLimit = 5

// Resolver runs a query through the lookup tiers: cache, vector search,
// then synchronous discovery, falling back to the background queue.
//
// Cache and queue failures are contained: the pipeline answers from the
// slower tier instead of failing the request.
type Resolver struct {
	cache       storage.CacheRepository
	queue       storage.DiscoveryQueueRepository
	supplements storage.SupplementRepository
	engine      *search.Engine
	controller  *discovery.Controller
	rewriter    ai.QueryRewriter
	logger      *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver) error

// WithSyncDiscovery enables discover-on-miss using the given controller.
// Without it, misses go straight to the background queue.
func WithSyncDiscovery(controller *discovery.Controller) ResolverOption {
	return func(r *Resolver) error {
		r.controller = controller
		return nil
	}
}

// WithResolverLogger sets a custom logger.
// Default is slog.Default().
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewResolver creates a new pipeline resolver.
func NewResolver(
	supplements storage.SupplementRepository,
	cache storage.CacheRepository,
	queue storage.DiscoveryQueueRepository,
	engine *search.Engine,
	provider ai.AIProvider,
	opts ...ResolverOption,
) (*Resolver, error) {
	if supplements == nil {
		return nil, discovery.ErrSupplementRepositoryRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if provider == nil {
		return nil, search.ErrAIProviderRequired
	}

	r := &Resolver{
		cache:       cache,
		queue:       queue,
		supplements: supplements,
		engine:      engine,
		rewriter:    provider.QueryRewriter(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Resolve answers a supplement lookup.
//
// Returns an error only for invalid input or a broken search path; a query
// that simply isn't indexed yet returns Found=false with Enqueued set.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	if err := core.ValidateQuery(req.Query); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	result := &Result{Query: req.Query}
	key := core.QueryHash(req.Query)

	// Tier 1: cache
	if r.cache != nil {
		entry, err := r.cache.GetEntry(ctx, key)
		if err == nil {
			r.logger.Debug("cache hit", "query", req.Query, "accessCount", entry.AccessCount)
			result.Found = true
			result.Source = SourceCache
			result.Matches = []*core.SupplementMatch{{Record: &entry.Supplement, Similarity: 1.0}}
			return result, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("cache read failed, falling through to search", "query", req.Query, "err", err)
		}
	}

	// Tier 2: vector search
	resolution, err := r.engine.Resolve(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	result.BestSimilarity = resolution.BestSimilarity

	if resolution.Found() {
		matches := []*core.SupplementMatch{resolution.Match}
		if limit > 1 {
			// Widen to the full neighborhood of the winning term
			more, err := r.engine.Search(ctx, resolution.Term, limit)
			if err == nil && len(more) > 0 {
				matches = more
			}
		}
		r.finishHit(ctx, key, matches[0])
		result.Found = true
		result.Source = SourceSearch
		result.Matches = matches
		return result, nil
	}

	// Tier 3: synchronous discovery
	if r.controller != nil {
		outcome, err := r.controller.Discover(ctx, req.Query)
		if err == nil {
			match := &core.SupplementMatch{Record: outcome.Record, Similarity: 1.0}
			r.finishHit(ctx, key, match)
			result.Found = true
			result.Source = SourceDiscovery
			result.Matches = []*core.SupplementMatch{match}
			return result, nil
		}
		var insufficient *discovery.InsufficientEvidenceError
		if errors.As(err, &insufficient) {
			result.Reason = ReasonInsufficientEvidence
			result.StudyCount = insufficient.StudyCount
		} else {
			r.logger.Warn("synchronous discovery failed", "query", req.Query, "err", err)
		}
	}

	// Miss: hand the term to the background worker
	if result.Reason == "" {
		result.Reason = ReasonNoMatch
	}
	result.Enqueued = r.enqueue(ctx, req.Query)
	return result, nil
}

// finishHit records the search and caches the winning match. Both are best
// effort.
func (r *Resolver) finishHit(ctx context.Context, key core.ID, match *core.SupplementMatch) {
	if err := r.supplements.RecordSearch(ctx, match.Record.Id); err != nil {
		r.logger.Warn("search count update failed", "id", match.Record.Id, "err", err)
	}

	if r.cache == nil {
		return
	}
	entry := &core.CacheEntry{
		Key:        key,
		Supplement: *match.Record,
		Embedding:  match.Record.Vector,
	}
	if err := r.cache.PutEntry(ctx, entry); err != nil {
		r.logger.Warn("cache write failed", "key", key, "err", err)
	}
}

// enqueue queues a missed query for background discovery. Best effort.
func (r *Resolver) enqueue(ctx context.Context, query string) bool {
	if r.queue == nil {
		return false
	}

	normalized, err := r.rewriter.Normalize(ctx, query)
	if err != nil || normalized == "" {
		normalized = query
	}

	item := &core.DiscoveryItem{
		Id:         core.QueryHash(normalized),
		Query:      query,
		Normalized: normalized,
	}
	if _, err := r.queue.Upsert(ctx, item); err != nil {
		r.logger.Warn("discovery enqueue failed", "query", query, "err", err)
		return false
	}

	r.logger.Info("query queued for discovery", "query", query, "normalized", normalized)
	return true
}
