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

import "errors"

// Domain validation errors
var (
	// ErrInvalidQuery indicates a query failed validation.
	// Callers map this to a client error, never a retry.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmptyQuery indicates the query text is empty after trimming.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrQueryTooLong indicates the query exceeds MaxQueryLength.
	ErrQueryTooLong = errors.New("query exceeds maximum length")

	// ErrInvalidRecord indicates a SupplementRecord failed validation.
	ErrInvalidRecord = errors.New("invalid supplement record")

	// ErrEmptyName indicates the record Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrDimensionMismatch indicates an embedding vector whose length does
	// not match the configured provider dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidGrade indicates an unrecognized evidence grade value.
	ErrInvalidGrade = errors.New("invalid evidence grade")

	// ErrInvalidStatus indicates an invalid DiscoveryStatus value.
	ErrInvalidStatus = errors.New("invalid discovery status")
)
