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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

// DefaultCacheTTL is the lifetime of a query cache entry.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CacheRepository implements storage.CacheRepository for BadgerDB.
// BadgerDB's native entry TTL handles expiry; entries vanish from reads the
// moment they lapse and are reclaimed by value log GC.
type CacheRepository struct {
	backend *Backend
	ttl     time.Duration
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new CacheRepository.
// A ttl of 0 means DefaultCacheTTL.
func NewCacheRepository(backend *Backend, ttl time.Duration) *CacheRepository {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheRepository{
		backend: backend,
		ttl:     ttl,
	}
}

// GetEntry retrieves a cache entry by query hash.
//
// A hit rewrites the entry with an incremented access counter but with only
// the REMAINING lifetime, so reads never push the expiry out.
func (r *CacheRepository) GetEntry(ctx context.Context, key core.ID) (*core.CacheEntry, error) {
	var result *core.CacheEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		entryKey := makeCacheEntryKey(key)
		item, err := tx.Get(entryKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var entry *core.CacheEntry
		if err := item.Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalCacheEntry(val)
			return err
		}); err != nil {
			return err
		}

		remaining := time.Until(entry.ExpiresAt)
		if remaining <= 0 {
			// Lapsed but not yet reclaimed by badger
			return storage.ErrNotFound
		}

		entry.AccessCount++
		entry.LastAccessed = time.Now().UTC()

		value, err := storage.MarshalCacheEntry(entry)
		if err != nil {
			return err
		}
		if err := tx.SetEntry(badger.NewEntry(entryKey, value).WithTTL(remaining)); err != nil {
			return err
		}

		result = entry
		return tx.Commit()
	}, true)
	return result, err
}

// PutEntry stores a cache entry under its query hash with a fresh TTL.
func (r *CacheRepository) PutEntry(ctx context.Context, entry *core.CacheEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		entryKey := makeCacheEntryKey(entry.Key)

		// Carry the access counter over from a previous entry
		var priorCount uint64
		item, err := tx.Get(entryKey)
		if err == nil {
			var prior *core.CacheEntry
			if err := item.Value(func(val []byte) error {
				var err error
				prior, err = storage.UnmarshalCacheEntry(val)
				return err
			}); err != nil {
				return err
			}
			priorCount = prior.AccessCount
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		now := time.Now().UTC()
		entry.AccessCount = priorCount + 1
		entry.LastAccessed = now
		entry.ExpiresAt = now.Add(r.ttl)

		value, err := storage.MarshalCacheEntry(entry)
		if err != nil {
			return err
		}
		if err := tx.SetEntry(badger.NewEntry(entryKey, value).WithTTL(r.ttl)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteEntry removes a cache entry. Removing a missing entry is not an error.
func (r *CacheRepository) DeleteEntry(ctx context.Context, key core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCacheEntryKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
