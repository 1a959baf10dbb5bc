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


package evidentia

import (
	"io"
	"log/slog"

	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/ai/openai"
	"github.com/poiesic/evidentia/discovery"
	"github.com/poiesic/evidentia/evidence"
	"github.com/poiesic/evidentia/pipeline"
	"github.com/poiesic/evidentia/reindex"
	"github.com/poiesic/evidentia/search"
	"github.com/poiesic/evidentia/server"
	"github.com/poiesic/evidentia/storage"
	"github.com/poiesic/evidentia/storage/badger"
)

// Catalog wires storage, the AI provider, the evidence oracle and the
// resolve pipeline into one handle. It is the main entry point for
// embedding the supplement catalog in an application.
type Catalog struct {
	stores     *badger.Stores
	provider   ai.AIProvider
	oracle     evidence.Oracle
	engine     *search.Engine
	controller *discovery.Controller
	resolver   *pipeline.Resolver
	logger     *slog.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	aiConfig      *ai.Config
	pubmedAPIKey  string
	pubmedBaseURL string
	syncDiscovery bool
	minStudies    int
}

// WithAIConfig sets the embedding and rewriter model configuration.
func WithAIConfig(config *ai.Config) CatalogOption {
	return func(o *catalogOptions) {
		o.aiConfig = config
	}
}

// WithPubMedAPIKey sets the NCBI API key used for evidence lookups.
// A key raises the PubMed rate limit from 3 to 10 requests per second.
func WithPubMedAPIKey(key string) CatalogOption {
	return func(o *catalogOptions) {
		o.pubmedAPIKey = key
	}
}

// WithPubMedBaseURL overrides the evidence oracle endpoint. Used for
// testing against a local stub.
func WithPubMedBaseURL(url string) CatalogOption {
	return func(o *catalogOptions) {
		o.pubmedBaseURL = url
	}
}

// WithSyncDiscovery makes the resolve pipeline attempt discovery inline
// on a search miss instead of only queuing it for the worker.
func WithSyncDiscovery() CatalogOption {
	return func(o *catalogOptions) {
		o.syncDiscovery = true
	}
}

// WithMinStudies sets the study-count gate for admitting discovered
// supplements.
func WithMinStudies(min int) CatalogOption {
	return func(o *catalogOptions) {
		o.minStudies = min
	}
}

// NewCatalog opens the catalog database at filePath and builds the full
// pipeline on top of it.
func NewCatalog(filePath string, opts ...CatalogOption) (*Catalog, error) {
	// Apply options
	options := &catalogOptions{
		aiConfig:   ai.DefaultConfig(), // Default if not provided
		minStudies: discovery.DefaultMinStudies,
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open storage
	stores, err := badger.OpenStores(filePath)
	if err != nil {
		return nil, err
	}

	// Create AI provider with configured settings
	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		stores.Close()
		return nil, err
	}

	// Evidence oracle with the 30-day count cache in front
	pubmedOpts := []evidence.PubMedOption{}
	if options.pubmedAPIKey != "" {
		pubmedOpts = append(pubmedOpts, evidence.WithAPIKey(options.pubmedAPIKey))
	}
	if options.pubmedBaseURL != "" {
		pubmedOpts = append(pubmedOpts, evidence.WithBaseURL(options.pubmedBaseURL))
	}
	oracle := evidence.NewCachedOracle(
		evidence.NewPubMedOracle(pubmedOpts...),
		stores.Evidence,
		evidence.DefaultCountTTL,
	)

	engine, err := search.NewEngine(stores.Supplements, provider)
	if err != nil {
		provider.Close()
		stores.Close()
		return nil, err
	}

	controller, err := discovery.NewController(stores.Supplements, oracle, provider,
		discovery.WithMinStudies(options.minStudies),
		discovery.WithDimensions(options.aiConfig.EmbeddingDimensions))
	if err != nil {
		provider.Close()
		stores.Close()
		return nil, err
	}

	resolverOpts := []pipeline.ResolverOption{}
	if options.syncDiscovery {
		resolverOpts = append(resolverOpts, pipeline.WithSyncDiscovery(controller))
	}
	resolver, err := pipeline.NewResolver(stores.Supplements, stores.Cache, stores.Queue, engine, provider, resolverOpts...)
	if err != nil {
		provider.Close()
		stores.Close()
		return nil, err
	}

	return &Catalog{
		stores:     stores,
		provider:   provider,
		oracle:     oracle,
		engine:     engine,
		controller: controller,
		resolver:   resolver,
		logger:     slog.Default(),
	}, nil
}

func (c *Catalog) Close() error {
	// Close AI provider first
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	// Close storage
	if err := c.stores.Close(); err != nil {
		c.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

func (c *Catalog) SupplementRepository() storage.SupplementRepository {
	return c.stores.Supplements
}

func (c *Catalog) CacheRepository() storage.CacheRepository {
	return c.stores.Cache
}

func (c *Catalog) QueueRepository() storage.DiscoveryQueueRepository {
	return c.stores.Queue
}

func (c *Catalog) Resolver() *pipeline.Resolver {
	return c.resolver
}

func (c *Catalog) SearchEngine() *search.Engine {
	return c.engine
}

func (c *Catalog) DiscoveryController() *discovery.Controller {
	return c.controller
}

func (c *Catalog) NewWorker(opts ...discovery.WorkerOption) (*discovery.Worker, error) {
	invalidator := discovery.NewInvalidator(c.stores.Cache)
	return discovery.NewWorker(c.stores.Queue, c.controller, invalidator, opts...)
}

func (c *Catalog) NewServer(opts ...server.ServerOption) (*server.Server, error) {
	return server.NewServer(c.resolver, c.stores.Supplements, opts...)
}

func (c *Catalog) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(c.stores.Supplements, c.provider.Embedder(), config, progress)
}
