package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// QueryHash derives the cache lookup key for a raw query.
// The digest is computed over the lowercased, trimmed text, so queries that
// differ only in case or surrounding whitespace share the same key.
func QueryHash(raw string) ID {
	return IDFromContent(strings.ToLower(strings.TrimSpace(raw)))
}

// SupplementMetadata describes the evidence profile of a catalog record.
type SupplementMetadata struct {
	Category    string
	Popularity  string
	Grade       EvidenceGrade
	StudyCount  int
	OracleQuery string // evidence-oracle query string used to validate the record
}

// SupplementRecord is a catalog entry for a dietary supplement.
// Records are created by seeding or discovery and never deleted in normal
// operation; counters and timestamps are updated on every successful
// resolution.
type SupplementRecord struct {
	Id             ID
	Name           string
	ScientificName string
	CommonNames    []string
	Vector         []float32 // embedding vector; dimension fixed by the active provider
	Metadata       SupplementMetadata
	SearchCount    uint64
	LastSearchedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SupplementMatch is a catalog record paired with its similarity to a query.
type SupplementMatch struct {
	Record     *SupplementRecord
	Similarity float32
}

// CacheEntry is a cached resolution result keyed by query hash.
// Expiry is always exactly the cache TTL from the write that created the
// entry; reads refresh the access counters but never the expiry.
type CacheEntry struct {
	Key          ID
	Supplement   SupplementRecord
	Embedding    []float32
	ExpiresAt    time.Time
	AccessCount  uint64
	LastAccessed time.Time
}

// DiscoveryStatus is the processing state of a discovery queue item.
type DiscoveryStatus int

const (
	// StatusPending marks an item waiting for worker processing.
	StatusPending DiscoveryStatus = iota + 1
	// StatusProcessing marks an item currently being processed.
	StatusProcessing
	// StatusCompleted marks an item whose supplement was admitted to the catalog.
	StatusCompleted
	// StatusFailed marks an item that could not be validated or inserted.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s DiscoveryStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DiscoveryItem is a durable backlog entry for a query that exhausted the
// synchronous path without a match. Items are keyed by a digest of the
// normalized query so duplicate misses collapse into one entry.
type DiscoveryItem struct {
	Id          ID // IDFromContent of the normalized query
	Query       string
	Normalized  string
	SearchCount uint64 // used as processing priority
	Status      DiscoveryStatus
	Reason      string // failure reason, set when Status is StatusFailed
	Retries     int
	CreatedAt   time.Time
	ProcessedAt time.Time
}

// EvidenceCount is a cached evidence-oracle result for a normalized term.
type EvidenceCount struct {
	Count       int
	OracleQuery string
	CachedAt    time.Time
}
