package badger

import (
	"fmt"
	"strings"

	"github.com/poiesic/evidentia/core"
)

// Key prefixes for different data types
const (
	supplementRecordPrefix = "suprec"
	supplementNamePrefix   = "suprecn"
	supplementIDSeq        = "suprecseq"
	cacheEntryPrefix       = "caent"
	queueItemPrefix        = "disq"
	queuePendingPrefix     = "disqp"
	evidenceCountPrefix    = "evcnt"
)

// makeSupplementKey generates a key for a supplement record by ID.
func makeSupplementKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", supplementRecordPrefix, id))
}

// makeSupplementNameKey generates a key for the case-insensitive name index.
func makeSupplementNameKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", supplementNamePrefix, strings.ToLower(strings.TrimSpace(name))))
}

// makeCacheEntryKey generates a key for a cache entry by query hash.
func makeCacheEntryKey(key core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", cacheEntryPrefix, key))
}

// makeQueueItemKey generates a key for a discovery queue item by ID.
func makeQueueItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", queueItemPrefix, id))
}

// makeQueuePendingKey generates a key for the pending-status index.
// These keys exist only while the item is pending; worker subscriptions
// watch this prefix.
func makeQueuePendingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", queuePendingPrefix, id))
}

// makeEvidenceCountKey generates a key for a cached evidence count by term.
func makeEvidenceCountKey(term string) []byte {
	return []byte(fmt.Sprintf("%s:%s", evidenceCountPrefix, strings.ToLower(strings.TrimSpace(term))))
}
