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


package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for stored records. Field order is the wire format and
// must not change between releases; append new fields at the end.
var (
	IDMUS               = idSer{}
	SupplementRecordMUS = supplementRecordSer{}
	DiscoveryItemMUS    = discoveryItemSer{}
	EvidenceCountMUS    = evidenceCountSer{}
)

type idSer struct{}

func (idSer) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idSer) Unmarshal(bs []byte) (v ID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return ID(num), n, err
}

func (idSer) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type supplementRecordSer struct{}

func (supplementRecordSer) Marshal(v SupplementRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.ScientificName, bs[n:])
	n += marshalStrings(v.CommonNames, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += ord.String.Marshal(v.Metadata.Category, bs[n:])
	n += ord.String.Marshal(v.Metadata.Popularity, bs[n:])
	n += ord.String.Marshal(string(v.Metadata.Grade), bs[n:])
	n += varint.Int.Marshal(v.Metadata.StudyCount, bs[n:])
	n += ord.String.Marshal(v.Metadata.OracleQuery, bs[n:])
	n += varint.Uint64.Marshal(v.SearchCount, bs[n:])
	n += marshalTime(v.LastSearchedAt, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (supplementRecordSer) Unmarshal(bs []byte) (v SupplementRecord, n int, err error) {
	var (
		n1    int
		id    uint64
		grade string
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = ID(id)
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ScientificName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CommonNames, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Metadata.Category, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Metadata.Popularity, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if grade, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Metadata.Grade = EvidenceGrade(grade)
	if v.Metadata.StudyCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Metadata.OracleQuery, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SearchCount, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.LastSearchedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (supplementRecordSer) Size(v SupplementRecord) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.ScientificName)
	size += sizeStrings(v.CommonNames)
	size += sizeVector(v.Vector)
	size += ord.String.Size(v.Metadata.Category)
	size += ord.String.Size(v.Metadata.Popularity)
	size += ord.String.Size(string(v.Metadata.Grade))
	size += varint.Int.Size(v.Metadata.StudyCount)
	size += ord.String.Size(v.Metadata.OracleQuery)
	size += varint.Uint64.Size(v.SearchCount)
	size += sizeTime(v.LastSearchedAt)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

type discoveryItemSer struct{}

func (discoveryItemSer) Marshal(v DiscoveryItem, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	n += ord.String.Marshal(v.Normalized, bs[n:])
	n += varint.Uint64.Marshal(v.SearchCount, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += ord.String.Marshal(v.Reason, bs[n:])
	n += varint.Int.Marshal(v.Retries, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.ProcessedAt, bs[n:])
	return n
}

func (discoveryItemSer) Unmarshal(bs []byte) (v DiscoveryItem, n int, err error) {
	var (
		n1     int
		id     uint64
		status int
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = ID(id)
	if v.Query, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Normalized, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SearchCount, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Status = DiscoveryStatus(status)
	if v.Reason, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Retries, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ProcessedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (discoveryItemSer) Size(v DiscoveryItem) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Query)
	size += ord.String.Size(v.Normalized)
	size += varint.Uint64.Size(v.SearchCount)
	size += varint.Int.Size(int(v.Status))
	size += ord.String.Size(v.Reason)
	size += varint.Int.Size(v.Retries)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.ProcessedAt)
	return size
}

type evidenceCountSer struct{}

func (evidenceCountSer) Marshal(v EvidenceCount, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Count, bs)
	n += ord.String.Marshal(v.OracleQuery, bs[n:])
	n += marshalTime(v.CachedAt, bs[n:])
	return n
}

func (evidenceCountSer) Unmarshal(bs []byte) (v EvidenceCount, n int, err error) {
	var n1 int
	v.Count, n, err = varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	if v.OracleQuery, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CachedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (evidenceCountSer) Size(v EvidenceCount) (size int) {
	size = varint.Int.Size(v.Count)
	size += ord.String.Size(v.OracleQuery)
	size += sizeTime(v.CachedAt)
	return size
}

// Timestamps are stored as Unix microseconds; the zero time encodes as 0.

func marshalTime(t time.Time, bs []byte) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Marshal(micros, bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || micros == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	var micros int64
	if !t.IsZero() {
		micros = t.UnixMicro()
	}
	return varint.Int64.Size(micros)
}

// Vectors are stored as a length followed by the IEEE 754 bits of each element.

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	var (
		n1   int
		bits uint32
	)
	for i := range v {
		if bits, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
		v[i] = math.Float32frombits(bits)
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]string, length)
	var n1 int
	for i := range v {
		if v[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return v, n, nil
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}
