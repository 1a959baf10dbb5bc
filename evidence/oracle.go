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


package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/evidentia/core"
)

// Oracle answers how many published studies exist for a supplement term.
// Implementations must be safe for concurrent use.
type Oracle interface {
	// StudyCount returns the study count for a term, along with the
	// literal query string that produced it.
	StudyCount(ctx context.Context, term string) (*core.EvidenceCount, error)
}

// BuildQuery converts a supplement term into a literature search expression.
//
// Short terms get an exact Title/Abstract match, which is both faster and
// more precise. Longer phrases fall back to a broader search constrained to
// supplementation literature. Redundant "supplement" suffixes are stripped
// first so they don't narrow the match.
func BuildQuery(term string) string {
	clean := strings.TrimSpace(term)
	clean = strings.TrimSuffix(clean, " supplementation")
	clean = strings.TrimSuffix(clean, " supplement")
	clean = strings.TrimSpace(clean)

	if len(strings.Fields(clean)) <= 3 {
		return fmt.Sprintf("%q[Title/Abstract]", clean)
	}
	return fmt.Sprintf("%s AND (supplement[Title/Abstract] OR supplementation[Title/Abstract])", clean)
}
