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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// RewriterHost is the base URL for the query rewriting service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	RewriterHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// RewriterModel is the model identifier to use for query normalization
	// and expansion.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	RewriterModel string

	// EmbeddingDimensions is the vector dimension produced by the embedding
	// model. All records in one catalog generation must share this dimension
	// or similarity search silently fails to match.
	// Default: 512
	EmbeddingDimensions int

	// MaxExpansionTerms caps the number of alternate terms returned by
	// query expansion.
	// Default: 4
	MaxExpansionTerms int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithRewriterHost sets the query rewriter service host URL.
func WithRewriterHost(host string) ConfigOption {
	return func(c *Config) {
		c.RewriterHost = host
	}
}

// WithHost sets both embedding and rewriter hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.RewriterHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithRewriterModel sets the rewriter model identifier.
func WithRewriterModel(model string) ConfigOption {
	return func(c *Config) {
		c.RewriterModel = model
	}
}

// WithEmbeddingDimensions sets the expected embedding vector dimension.
func WithEmbeddingDimensions(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDimensions = dim
	}
}

// WithMaxExpansionTerms sets the maximum number of expansion terms.
func WithMaxExpansionTerms(max int) ConfigOption {
	return func(c *Config) {
		c.MaxExpansionTerms = max
	}
}

// DefaultEmbeddingDimensions is the vector dimension of the default
// embedding model.
const DefaultEmbeddingDimensions = 512

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and rewriter use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:       defaultHost,
		RewriterHost:        defaultHost,
		EmbeddingModel:      "embeddinggemma",
		RewriterModel:       "qwen2.5:3b",
		EmbeddingDimensions: DefaultEmbeddingDimensions,
		MaxExpansionTerms:   4,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("text-embedding-3-small"),
//       WithEmbeddingDimensions(1536),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.RewriterHost != "" && !strings.HasSuffix(c.RewriterHost, "/v1") {
		c.RewriterHost = strings.TrimSuffix(c.RewriterHost, "/")
		c.RewriterHost = c.RewriterHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.RewriterHost == "" {
		return errors.New("ai config: RewriterHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.RewriterModel == "" {
		return errors.New("ai config: RewriterModel is required")
	}
	if c.EmbeddingDimensions <= 0 {
		return errors.New("ai config: EmbeddingDimensions must be positive")
	}
	if c.MaxExpansionTerms < 1 {
		return errors.New("ai config: MaxExpansionTerms must be at least 1")
	}
	return nil
}
