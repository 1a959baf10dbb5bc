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


package reindex

import (
	"context"
	"log/slog"
	"time"
)

// Retry runs op up to attempts times, doubling the wait between tries.
//
// The embedding service is the flaky piece of a migration: a model reload or
// a dropped connection should fail one batch attempt, not the whole run.
// Waits are context-aware, and no wait follows the final failure.
func Retry(ctx context.Context, attempts int, wait time.Duration, op func() error) error {
	if attempts <= 0 {
		return ErrInvalidAttempts
	}

	var lastErr error
	for try := 1; try <= attempts; try++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if try > 1 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			wait *= 2
		}

		if lastErr = op(); lastErr == nil {
			if try > 1 {
				slog.Debug("batch recovered", "try", try)
			}
			return nil
		}
		slog.Debug("batch attempt failed", "try", try, "attempts", attempts, "err", lastErr)
	}
	return lastErr
}
