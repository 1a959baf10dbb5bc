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


package evidence

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

// DefaultCountTTL is how long a cached study count stays fresh. Literature
// counts only grow, and slowly, so a month-old figure grades the same.
const DefaultCountTTL = 30 * 24 * time.Hour

// CachedOracle wraps an Oracle with a persistent count cache.
//
// Cache failures on either the read or the write path degrade to a direct
// oracle call; they never fail the lookup.
type CachedOracle struct {
	oracle Oracle
	store  storage.EvidenceCacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedOracle wraps oracle with a count cache backed by store.
// A ttl of 0 means DefaultCountTTL.
func NewCachedOracle(oracle Oracle, store storage.EvidenceCacheRepository, ttl time.Duration) *CachedOracle {
	if ttl == 0 {
		ttl = DefaultCountTTL
	}
	return &CachedOracle{
		oracle: oracle,
		store:  store,
		ttl:    ttl,
		logger: slog.Default().With("component", "cached-oracle"),
	}
}

// StudyCount returns the cached count for the term if fresh, otherwise
// consults the underlying oracle and caches the result. When the oracle is
// unreachable a stale cached count is served instead of the error.
func (c *CachedOracle) StudyCount(ctx context.Context, term string) (*core.EvidenceCount, error) {
	key := strings.ToLower(strings.TrimSpace(term))

	cached, cacheErr := c.store.GetCount(ctx, key)
	if cacheErr == nil && time.Since(cached.CachedAt) < c.ttl {
		c.logger.Debug("evidence cache hit", "term", term, "count", cached.Count)
		return cached, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, storage.ErrNotFound) {
		c.logger.Warn("evidence cache read failed", "term", term, "err", cacheErr)
	}

	count, err := c.oracle.StudyCount(ctx, term)
	if err != nil {
		// An expired count beats no count: literature counts only grow,
		// so a stale figure still grades correctly during an outage
		if cacheErr == nil {
			c.logger.Warn("oracle unavailable, serving stale count",
				"term", term, "count", cached.Count, "age", time.Since(cached.CachedAt), "err", err)
			return cached, nil
		}
		return nil, err
	}

	if err := c.store.PutCount(ctx, key, count); err != nil {
		c.logger.Warn("evidence cache write failed", "term", term, "err", err)
	}
	return count, nil
}
