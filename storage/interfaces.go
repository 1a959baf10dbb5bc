package storage

import (
	"context"

	"github.com/poiesic/evidentia/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds supplement records similar to the given vector.
	// Returns records with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SupplementMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// SupplementRepository provides operations for managing supplement records.
type SupplementRepository interface {
	Repository
	// AddSupplements adds one or more supplement records to storage.
	// For records with ID=0, generates new IDs from sequence.
	// Sets CreatedAt timestamp if not already set.
	// Returns the records with generated IDs and timestamps populated.
	AddSupplements(ctx context.Context, records ...*core.SupplementRecord) ([]*core.SupplementRecord, error)

	// UpdateSupplements updates existing supplement records.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateSupplements(ctx context.Context, records ...*core.SupplementRecord) ([]*core.SupplementRecord, error)

	// DeleteSupplements removes supplement records by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any record doesn't exist.
	DeleteSupplements(ctx context.Context, ids ...core.ID) error

	// GetSupplement retrieves a single supplement record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetSupplement(ctx context.Context, id core.ID) (*core.SupplementRecord, error)

	// FindByName finds a supplement record by its name, case-insensitively.
	// Returns ErrNotFound if no matching record exists.
	FindByName(ctx context.Context, name string) (*core.SupplementRecord, error)

	// ListSupplements streams all supplement records in ID order,
	// invoking fn for each. Iteration stops if fn returns an error.
	ListSupplements(ctx context.Context, fn func(record *core.SupplementRecord) error) error

	// CountSupplements returns the total number of supplement records.
	CountSupplements(ctx context.Context) (int, error)

	// RecordSearch increments the search counter of a record and stamps
	// its last-searched time. Returns ErrNotFound if the record doesn't exist.
	RecordSearch(ctx context.Context, id core.ID) error
}

// CacheRepository provides operations for the query result cache.
// Entries expire automatically; implementations enforce the configured TTL.
type CacheRepository interface {
	// GetEntry retrieves a cache entry by query hash.
	// A hit increments the entry's access counter and stamps its access
	// time without extending the expiry.
	// Returns ErrNotFound if the entry doesn't exist or has expired.
	GetEntry(ctx context.Context, key core.ID) (*core.CacheEntry, error)

	// PutEntry stores a cache entry under its query hash with a fresh TTL.
	// If an entry already exists its access counter carries over,
	// incremented by one.
	PutEntry(ctx context.Context, entry *core.CacheEntry) error

	// DeleteEntry removes a cache entry.
	// Removing a missing entry is not an error.
	DeleteEntry(ctx context.Context, key core.ID) error
}

// DiscoveryQueueRepository provides operations for the discovery queue.
type DiscoveryQueueRepository interface {
	// Upsert adds a discovery item or merges it with an existing one.
	// Items are keyed by the hash of the normalized query; repeated
	// enqueues of the same term collapse into one item with its
	// SearchCount incremented. Enqueueing a completed or failed item
	// returns it to pending; this is the only retry path.
	Upsert(ctx context.Context, item *core.DiscoveryItem) (*core.DiscoveryItem, error)

	// GetItem retrieves a discovery item by its ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetItem(ctx context.Context, id core.ID) (*core.DiscoveryItem, error)

	// UpdateStatus transitions an item to the given status.
	// A failure status records the reason and increments the retry
	// counter; terminal statuses stamp ProcessedAt.
	// Returns ErrNotFound if the item doesn't exist.
	UpdateStatus(ctx context.Context, id core.ID, status core.DiscoveryStatus, reason string) (*core.DiscoveryItem, error)

	// ListPending returns pending discovery items, oldest first, up to limit.
	// A limit of 0 means no limit.
	ListPending(ctx context.Context, limit int) ([]*core.DiscoveryItem, error)

	// ReclaimProcessing returns items stuck in the processing status to
	// pending. An item is stuck when the worker that claimed it died
	// before recording an outcome. Returns the number of reclaimed items.
	ReclaimProcessing(ctx context.Context) (int, error)

	// Subscribe invokes fn with the ID of each newly pending item until
	// ctx is cancelled. Only transitions INTO pending are delivered;
	// status updates on existing items are not.
	Subscribe(ctx context.Context, fn func(id core.ID) error) error
}

// EvidenceCacheRepository caches study counts from the evidence oracle.
type EvidenceCacheRepository interface {
	// GetCount retrieves a cached evidence count for a term.
	// Returns ErrNotFound if no fresh entry exists.
	GetCount(ctx context.Context, term string) (*core.EvidenceCount, error)

	// PutCount stores an evidence count for a term.
	PutCount(ctx context.Context, term string, count *core.EvidenceCount) error
}
