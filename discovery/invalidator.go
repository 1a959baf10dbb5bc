package discovery

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

// Invalidator drops cached query results that a newly indexed record makes
// stale, so the next search sees the record instead of a cached miss.
type Invalidator struct {
	cache  storage.CacheRepository
	logger *slog.Logger
}

// NewInvalidator creates a new Invalidator.
func NewInvalidator(cache storage.CacheRepository) *Invalidator {
	return &Invalidator{
		cache:  cache,
		logger: slog.Default().With("component", "cache-invalidator"),
	}
}

// InvalidateFor removes cache entries keyed by any of the given query
// strings. Best effort: failures are logged, never returned, because a
// stale entry expires on its own anyway.
func (i *Invalidator) InvalidateFor(ctx context.Context, queries ...string) {
	for _, query := range queries {
		if query == "" {
			continue
		}
		key := core.QueryHash(query)
		if err := i.cache.DeleteEntry(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			i.logger.Warn("cache invalidation failed", "query", query, "err", err)
			continue
		}
		i.logger.Debug("cache entry invalidated", "query", query)
	}
}
