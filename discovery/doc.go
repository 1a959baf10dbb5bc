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


// Package discovery indexes supplements that searches could not find.
//
// The Controller runs the discovery sequence for one query: normalize to a
// canonical term, check the published literature through an evidence
// oracle, gate on a minimum study count, grade, and insert into the index.
//
// The Worker drains the persistent discovery queue in the background using
// the same controller, so terms enqueued by missed searches get indexed
// without blocking any request. The Invalidator clears cache entries made
// stale by newly indexed records.
package discovery
