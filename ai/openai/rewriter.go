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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/evidentia/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryRewriter implements ai.QueryRewriter using OpenAI-compatible chat APIs.
// Normalization results are memoized per process keyed by the lowercased
// input, for the lifetime of the warm execution context.
type QueryRewriter struct {
	client   llms.Model
	maxTerms int
	logger   *slog.Logger

	mu   sync.Mutex
	memo map[string]string
}

// newQueryRewriter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryRewriter(config *ai.Config) (*QueryRewriter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.RewriterHost),
		openai.WithToken("none"),
		openai.WithModel(config.RewriterModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryRewriter{
		client:   client,
		maxTerms: config.MaxExpansionTerms,
		logger:   slog.Default().With("component", "openai-rewriter"),
		memo:     make(map[string]string),
	}, nil
}

// NewQueryRewriter creates a new query rewriter using the provided configuration.
//
// Returns ai.QueryRewriter interface to enforce abstraction.
func NewQueryRewriter(config *ai.Config) (ai.QueryRewriter, error) {
	return newQueryRewriter(config)
}

// Normalize resolves a query to its canonical English supplement name.
// On model failure the original query is returned unchanged.
func (r *QueryRewriter) Normalize(ctx context.Context, query string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	r.mu.Lock()
	cached, ok := r.memo[key]
	r.mu.Unlock()
	if ok {
		r.logger.Debug("normalization memo hit", "query", query, "normalized", cached)
		return cached, nil
	}

	prompt := fmt.Sprintf(normalizePromptTemplate, query)
	response, err := r.client.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0.0),
		llms.WithMaxTokens(50),
	)
	if err != nil {
		// Silent degradation: the pipeline continues with the raw query.
		r.logger.Warn("normalization failed, using original query", "query", query, "err", err)
		return query, nil
	}

	if len(response.Choices) < 1 {
		r.logger.Debug("no choices returned from model")
		return query, nil
	}

	normalized := strings.TrimSpace(response.Choices[0].Content)
	normalized = strings.Trim(normalized, `"`)
	normalized = strings.TrimSuffix(normalized, ".")
	if normalized == "" {
		return query, nil
	}

	r.mu.Lock()
	r.memo[key] = normalized
	r.mu.Unlock()

	r.logger.Debug("normalized query", "query", query, "normalized", normalized)
	return normalized, nil
}

// Expand returns up to maxTerms alternate search terms for a query.
// On failure or malformed model output the original query is returned as the
// only candidate.
func (r *QueryRewriter) Expand(ctx context.Context, query string) ([]string, error) {
	prompt := fmt.Sprintf(expandPromptTemplate, query, r.maxTerms)
	response, err := r.client.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(0.3),
		llms.WithMaxTokens(200),
	)
	if err != nil {
		r.logger.Warn("query expansion failed, using original query", "query", query, "err", err)
		return []string{query}, nil
	}

	if len(response.Choices) < 1 {
		r.logger.Debug("no choices returned from model")
		return []string{query}, nil
	}

	// Strip markdown code fences if present
	responseText := strings.TrimSpace(response.Choices[0].Content)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var terms []string
	if err := json.Unmarshal([]byte(responseText), &terms); err != nil {
		r.logger.Warn("error parsing expansion response",
			"response", responseText,
			"err", err)
		return []string{query}, nil
	}

	// Drop empty entries and cap at maxTerms
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term != "" {
			cleaned = append(cleaned, term)
		}
		if len(cleaned) == r.maxTerms {
			break
		}
	}
	if len(cleaned) == 0 {
		return []string{query}, nil
	}

	r.logger.Debug("expanded query", "query", query, "terms", cleaned)
	return cleaned, nil
}
