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


package openai

import (
	"github.com/poiesic/evidentia/ai"
)

// Provider bundles the OpenAI-compatible embedder and query rewriter behind
// the ai.AIProvider interface.
type Provider struct {
	embedder *Embedder
	rewriter *QueryRewriter
}

// NewProvider creates an AI provider backed by OpenAI-compatible endpoints.
// The embedder and rewriter may point at different hosts and models; see
// ai.Config.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	rewriter, err := newQueryRewriter(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder: embedder,
		rewriter: rewriter,
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) QueryRewriter() ai.QueryRewriter {
	return p.rewriter
}

// Close releases provider resources. The HTTP-backed clients hold no
// persistent connections, so this is currently a no-op.
func (p *Provider) Close() error {
	return nil
}
