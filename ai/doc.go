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


// Package ai defines the interfaces for the external AI services the
// pipeline depends on: text embedding and query rewriting.
//
// Both services are treated as opaque collaborators with a fixed
// request/response contract. Concrete implementations live in subpackages:
//
//   - ai/openai: OpenAI-compatible APIs via langchaingo
//   - ai/mock: deterministic test doubles
//
// Implementations are expected to degrade gracefully: the pipeline is
// designed so that a failing rewriter falls back to the original query text
// rather than failing the request.
package ai
