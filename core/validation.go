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
	"fmt"
	"strings"
)

// MaxQueryLength is the maximum accepted query length in characters.
const MaxQueryLength = 200

// ValidateQuery validates a raw query string according to domain rules.
//
// Validation rules:
//   - must not be empty after trimming whitespace
//   - must not exceed MaxQueryLength characters
//
// All returned errors wrap ErrInvalidQuery so callers can branch on the
// error kind.
func ValidateQuery(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, ErrEmptyQuery)
	}
	if len(trimmed) > MaxQueryLength {
		return fmt.Errorf("%w: %w (%d > %d)", ErrInvalidQuery, ErrQueryTooLong, len(trimmed), MaxQueryLength)
	}
	return nil
}

// ValidateRecord validates a SupplementRecord before insertion.
//
// Validation rules:
//   - Name must not be empty
//   - Vector length must equal dimensions (mismatched vectors silently fail
//     to match in similarity search, so they are rejected up front)
//   - Metadata.Grade must be a defined grade when set
//
// NOT validated:
//   - ID (0 is valid from database sequences)
//   - timestamps (populated by the repository)
func ValidateRecord(record *SupplementRecord, dimensions int) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyName)
	}

	if len(record.Vector) != dimensions {
		return fmt.Errorf("%w: %w (%d != %d)", ErrInvalidRecord, ErrDimensionMismatch, len(record.Vector), dimensions)
	}

	if record.Metadata.Grade != "" && !record.Metadata.Grade.IsValid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidRecord, ErrInvalidGrade, record.Metadata.Grade)
	}

	return nil
}

// ValidateStatus validates that a DiscoveryStatus has a defined value.
func ValidateStatus(status DiscoveryStatus) error {
	if status < StatusPending || status > StatusFailed {
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
	return nil
}
