package badger

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

// SupplementRepository implements storage.SupplementRepository for BadgerDB.
type SupplementRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SupplementRepository = (*SupplementRepository)(nil)

// NewSupplementRepository creates a new SupplementRepository.
func NewSupplementRepository(backend *Backend) (*SupplementRepository, error) {
	idSeq, err := backend.GetSequence(supplementIDSeq)
	if err != nil {
		return nil, err
	}

	return &SupplementRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SupplementRepository) Close() error {
	return r.idSeq.Release()
}

// FindSimilar delegates to the backend.
func (r *SupplementRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SupplementMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *SupplementRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSupplements adds one or more supplement records to storage.
func (r *SupplementRepository) AddSupplements(ctx context.Context, records ...*core.SupplementRecord) ([]*core.SupplementRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if record.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				record.Id = core.ID(nextID)
			}

			if record.CreatedAt.IsZero() {
				record.CreatedAt = time.Now().UTC()
			}
			record.UpdatedAt = record.CreatedAt

			// Reject a second record under the same name
			nameKey := makeSupplementNameKey(record.Name)
			if _, err := tx.Get(nameKey); err == nil {
				return storage.ErrDuplicateKey
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			// Store primary record
			key := makeSupplementKey(record.Id)
			value := storage.MarshalSupplementRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update name index
			if err := tx.Set(nameKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateSupplements updates existing supplement records.
func (r *SupplementRepository) UpdateSupplements(ctx context.Context, records ...*core.SupplementRecord) ([]*core.SupplementRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeSupplementKey(record.Id)

			// Read old record to detect changes
			old, err := r.readSupplement(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			record.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalSupplementRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Move name index if the name changed
			if !strings.EqualFold(old.Name, record.Name) {
				if err := tx.Delete(makeSupplementNameKey(old.Name)); err != nil {
					return err
				}
				if err := tx.Set(makeSupplementNameKey(record.Name), storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteSupplements removes supplement records by their IDs.
func (r *SupplementRepository) DeleteSupplements(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeSupplementKey(id)

			// Read record to get the name for index cleanup
			record, err := r.readSupplement(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeSupplementNameKey(record.Name)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetSupplement retrieves a single supplement record by ID.
func (r *SupplementRepository) GetSupplement(ctx context.Context, id core.ID) (*core.SupplementRecord, error) {
	var result *core.SupplementRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSupplementKey(id)
		var err error
		result, err = r.readSupplement(tx, key)
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

// FindByName finds a supplement record by its name, case-insensitively.
func (r *SupplementRepository) FindByName(ctx context.Context, name string) (*core.SupplementRecord, error) {
	var result *core.SupplementRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSupplementNameKey(name))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = r.readSupplement(tx, makeSupplementKey(id))
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

// ListSupplements streams all supplement records in ID order.
func (r *SupplementRepository) ListSupplements(ctx context.Context, fn func(record *core.SupplementRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(supplementRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := iter.Item()
			key := item.Key()

			// Skip index keys (name index and sequence key)
			if bytes.Equal(key, []byte(supplementIDSeq)) ||
				bytes.HasPrefix(key, []byte(supplementNamePrefix)) {
				continue
			}

			var record *core.SupplementRecord
			if err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalSupplementRecord(val)
				return err
			}); err != nil {
				return err
			}
			if record == nil {
				continue
			}

			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountSupplements returns the total number of supplement records.
func (r *SupplementRepository) CountSupplements(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(supplementRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if bytes.Equal(key, []byte(supplementIDSeq)) ||
				bytes.HasPrefix(key, []byte(supplementNamePrefix)) {
				continue
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// RecordSearch increments the search counter and stamps the last-searched time.
func (r *SupplementRepository) RecordSearch(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSupplementKey(id)
		record, err := r.readSupplement(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		record.SearchCount++
		record.LastSearchedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalSupplementRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readSupplement reads a supplement record from the transaction.
func (r *SupplementRepository) readSupplement(tx *badger.Txn, key []byte) (*core.SupplementRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.SupplementRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalSupplementRecord(val)
		return unmarshalErr
	})
	return record, err
}
