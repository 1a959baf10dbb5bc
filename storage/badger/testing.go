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

// Stores bundles every repository backed by a single BadgerDB instance.
type Stores struct {
	Backend     *Backend
	Supplements *SupplementRepository
	Cache       *CacheRepository
	Queue       *DiscoveryQueueRepository
	Evidence    *EvidenceCacheRepository
}

// Close releases every repository and the backend.
func (s *Stores) Close() error {
	if err := s.Supplements.Close(); err != nil {
		s.Backend.Close()
		return err
	}
	return s.Backend.Close()
}

// OpenStores opens the full repository set over one database at path.
func OpenStores(path string) (*Stores, error) {
	return openStores(path, false)
}

// NewMemoryStores creates the full repository set over an in-memory database
// for testing. Caller must Close the result when done.
func NewMemoryStores() (*Stores, error) {
	return openStores("", true)
}

func openStores(path string, inMemory bool) (*Stores, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	supplements, err := NewSupplementRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Stores{
		Backend:     backend,
		Supplements: supplements,
		Cache:       NewCacheRepository(backend, 0),
		Queue:       NewDiscoveryQueueRepository(backend),
		Evidence:    NewEvidenceCacheRepository(backend),
	}, nil
}
