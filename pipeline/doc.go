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

// Package pipeline ties the lookup tiers together into a single resolve
// call: query cache first, vector search second, then synchronous
// discovery if configured, with misses handed to the background
// discovery queue.
//
// The resolver treats the cache and queue as accelerators, not
// dependencies. If either fails, the request still gets answered from
// the tiers below; the failure is logged and the caller never sees it.
// Only invalid input and a broken search path surface as errors.
//
// Successful answers are written back to the cache on the way out, so a
// repeated query is served without touching the embedding model.
package pipeline
