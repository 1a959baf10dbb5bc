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


package storage

import (
	"github.com/poiesic/evidentia/core"
	"github.com/vmihailenco/msgpack/v5"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSupplementRecord serializes a SupplementRecord to bytes.
func MarshalSupplementRecord(record *core.SupplementRecord) []byte {
	buf := make([]byte, core.SupplementRecordMUS.Size(*record))
	core.SupplementRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalSupplementRecord deserializes a SupplementRecord from bytes.
func UnmarshalSupplementRecord(data []byte) (*core.SupplementRecord, error) {
	record, _, err := core.SupplementRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarshalDiscoveryItem serializes a DiscoveryItem to bytes.
func MarshalDiscoveryItem(item *core.DiscoveryItem) []byte {
	buf := make([]byte, core.DiscoveryItemMUS.Size(*item))
	core.DiscoveryItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalDiscoveryItem deserializes a DiscoveryItem from bytes.
func UnmarshalDiscoveryItem(data []byte) (*core.DiscoveryItem, error) {
	item, _, err := core.DiscoveryItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalEvidenceCount serializes an EvidenceCount to bytes.
func MarshalEvidenceCount(count *core.EvidenceCount) []byte {
	buf := make([]byte, core.EvidenceCountMUS.Size(*count))
	core.EvidenceCountMUS.Marshal(*count, buf)
	return buf
}

// UnmarshalEvidenceCount deserializes an EvidenceCount from bytes.
func UnmarshalEvidenceCount(data []byte) (*core.EvidenceCount, error) {
	count, _, err := core.EvidenceCountMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &count, nil
}

// MarshalCacheEntry serializes a CacheEntry to bytes.
//
// Cache entries use msgpack rather than the mus wire format: they are
// transient, carry nested structures, and never need to survive a schema
// change, so self-describing encoding is worth the extra bytes.
func MarshalCacheEntry(entry *core.CacheEntry) ([]byte, error) {
	return msgpack.Marshal(entry)
}

// UnmarshalCacheEntry deserializes a CacheEntry from bytes.
func UnmarshalCacheEntry(data []byte) (*core.CacheEntry, error) {
	var entry core.CacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
