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
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/pb"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

// DiscoveryQueueRepository implements storage.DiscoveryQueueRepository for
// BadgerDB.
//
// Each pending item carries a companion key under the pending prefix.
// Subscribers watch that prefix, so a write there is the "new work" signal;
// the key is removed the moment the item leaves the pending status.
type DiscoveryQueueRepository struct {
	backend *Backend
}

var _ storage.DiscoveryQueueRepository = (*DiscoveryQueueRepository)(nil)

// NewDiscoveryQueueRepository creates a new DiscoveryQueueRepository.
func NewDiscoveryQueueRepository(backend *Backend) *DiscoveryQueueRepository {
	return &DiscoveryQueueRepository{backend: backend}
}

// Upsert adds a discovery item or merges it with an existing one.
func (r *DiscoveryQueueRepository) Upsert(ctx context.Context, item *core.DiscoveryItem) (*core.DiscoveryItem, error) {
	var result *core.DiscoveryItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeQueueItemKey(item.Id)

		existing, err := r.readItem(tx, key)
		if err != nil {
			return err
		}

		requeued := false
		if existing != nil {
			// Same term already queued: collapse into one item and count
			// the repeated demand
			existing.SearchCount++
			// A new enqueue gives completed and failed items another run
			if existing.Status == core.StatusCompleted || existing.Status == core.StatusFailed {
				existing.Status = core.StatusPending
				existing.Reason = ""
				requeued = true
			}
			result = existing
		} else {
			if item.SearchCount == 0 {
				item.SearchCount = 1
			}
			item.Status = core.StatusPending
			item.CreatedAt = time.Now().UTC()
			result = item
		}

		if err := tx.Set(key, storage.MarshalDiscoveryItem(result)); err != nil {
			return err
		}

		if existing == nil || requeued {
			// Signal subscribers
			if err := tx.Set(makeQueuePendingKey(result.Id), storage.MarshalID(result.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	return result, err
}

// GetItem retrieves a discovery item by its ID.
func (r *DiscoveryQueueRepository) GetItem(ctx context.Context, id core.ID) (*core.DiscoveryItem, error) {
	var result *core.DiscoveryItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readItem(tx, makeQueueItemKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateStatus transitions an item to the given status.
func (r *DiscoveryQueueRepository) UpdateStatus(ctx context.Context, id core.ID, status core.DiscoveryStatus, reason string) (*core.DiscoveryItem, error) {
	if err := core.ValidateStatus(status); err != nil {
		return nil, err
	}

	var result *core.DiscoveryItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeQueueItemKey(id)
		item, err := r.readItem(tx, key)
		if err != nil {
			return err
		}
		if item == nil {
			return storage.ErrNotFound
		}

		wasPending := item.Status == core.StatusPending

		item.Status = status
		item.Reason = reason
		switch status {
		case core.StatusCompleted:
			item.ProcessedAt = time.Now().UTC()
		case core.StatusFailed:
			item.ProcessedAt = time.Now().UTC()
			item.Retries++
		}

		if err := tx.Set(key, storage.MarshalDiscoveryItem(item)); err != nil {
			return err
		}

		if wasPending && status != core.StatusPending {
			if err := tx.Delete(makeQueuePendingKey(id)); err != nil {
				return err
			}
		}
		if !wasPending && status == core.StatusPending {
			if err := tx.Set(makeQueuePendingKey(id), storage.MarshalID(id)); err != nil {
				return err
			}
		}

		result = item
		return tx.Commit()
	}, true)
	return result, err
}

// ListPending returns pending discovery items, oldest first, up to limit.
func (r *DiscoveryQueueRepository) ListPending(ctx context.Context, limit int) ([]*core.DiscoveryItem, error) {
	var results []*core.DiscoveryItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(queuePendingPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := r.readItem(tx, makeQueueItemKey(id))
			if err != nil {
				return err
			}
			if item == nil || item.Status != core.StatusPending {
				continue
			}
			results = append(results, item)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.DiscoveryItem) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// ReclaimProcessing returns items stuck in the processing status to pending.
//
// A worker that dies between claiming an item and recording its outcome
// leaves the item in processing with no pending key, so nothing would ever
// pick it up again. Callers run this before draining the queue.
func (r *DiscoveryQueueRepository) ReclaimProcessing(ctx context.Context) (int, error) {
	var reclaimed int
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(queueItemPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var stuck []*core.DiscoveryItem
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var item *core.DiscoveryItem
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalDiscoveryItem(val)
				return err
			}); err != nil {
				return err
			}
			if item.Status == core.StatusProcessing {
				stuck = append(stuck, item)
			}
		}
		iter.Close()

		for _, item := range stuck {
			item.Status = core.StatusPending
			item.Reason = ""
			if err := tx.Set(makeQueueItemKey(item.Id), storage.MarshalDiscoveryItem(item)); err != nil {
				return err
			}
			if err := tx.Set(makeQueuePendingKey(item.Id), storage.MarshalID(item.Id)); err != nil {
				return err
			}
		}
		reclaimed = len(stuck)
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return reclaimed, nil
}

// Subscribe invokes fn with the ID of each newly pending item until ctx is
// cancelled.
func (r *DiscoveryQueueRepository) Subscribe(ctx context.Context, fn func(id core.ID) error) error {
	prefix := []byte(queuePendingPrefix + ":")
	return r.backend.Subscribe(ctx, prefix, func(kv *pb.KV) error {
		// Deletions of the pending key also arrive here with an empty value
		if len(kv.Value) == 0 {
			return nil
		}
		id, err := storage.UnmarshalID(kv.Value)
		if err != nil {
			return err
		}
		return fn(id)
	})
}

// readItem reads a discovery item from the transaction.
func (r *DiscoveryQueueRepository) readItem(tx *badger.Txn, key []byte) (*core.DiscoveryItem, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var result *core.DiscoveryItem
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		result, unmarshalErr = storage.UnmarshalDiscoveryItem(val)
		return unmarshalErr
	})
	return result, err
}
