package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

// EvidenceCacheRepository implements storage.EvidenceCacheRepository for
// BadgerDB. Freshness is the caller's concern; entries persist until
// overwritten.
type EvidenceCacheRepository struct {
	backend *Backend
}

var _ storage.EvidenceCacheRepository = (*EvidenceCacheRepository)(nil)

// NewEvidenceCacheRepository creates a new EvidenceCacheRepository.
func NewEvidenceCacheRepository(backend *Backend) *EvidenceCacheRepository {
	return &EvidenceCacheRepository{backend: backend}
}

// GetCount retrieves a cached evidence count for a term.
func (r *EvidenceCacheRepository) GetCount(ctx context.Context, term string) (*core.EvidenceCount, error) {
	var result *core.EvidenceCount
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEvidenceCountKey(term))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalEvidenceCount(val)
			return err
		})
	}, false)
	return result, err
}

// PutCount stores an evidence count for a term.
func (r *EvidenceCacheRepository) PutCount(ctx context.Context, term string, count *core.EvidenceCount) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEvidenceCountKey(term), storage.MarshalEvidenceCount(count)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
