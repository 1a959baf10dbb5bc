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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/evidentia"
	"github.com/poiesic/evidentia/ai"
	"github.com/poiesic/evidentia/ai/openai"
	"github.com/poiesic/evidentia/discovery"
	"github.com/poiesic/evidentia/reindex"
	"github.com/poiesic/evidentia/storage/badger"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "evidentia",
		Usage: "Evidence-backed supplement catalog with semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the search API, optionally with the discovery worker",
				Action: serveCommand,
				Flags: append(catalogFlags(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Address for the HTTP API to listen on",
						Value: ":8080",
					},
					&cli.BoolFlag{
						Name:  "worker",
						Usage: "Run the background discovery worker in-process",
					},
					&cli.BoolFlag{
						Name:  "sync-discovery",
						Usage: "Attempt discovery inline on a search miss",
					},
				),
			},
			{
				Name:   "worker",
				Usage:  "Run only the background discovery worker",
				Action: workerCommand,
				Flags: append(catalogFlags(),
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent discovery jobs",
						Value: 2,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all supplement records with a new embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "embedding-dimensions",
						Usage: "Embedding vector dimension of the new model",
						Value: 512,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// catalogFlags are shared by every command that opens the full catalog.
func catalogFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL for embeddings and query rewriting",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "rewriter-model",
			Usage: "Query rewriter model name",
			Value: "qwen2.5:3b",
		},
		&cli.IntFlag{
			Name:  "embedding-dimensions",
			Usage: "Embedding vector dimension",
			Value: 512,
		},
		&cli.StringFlag{
			Name:    "pubmed-api-key",
			Usage:   "NCBI API key for evidence lookups",
			EnvVars: []string{"PUBMED_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "min-studies",
			Usage: "Minimum study count to admit a discovered supplement",
			Value: 3,
		},
	}
}

func openCatalog(c *cli.Context, extra ...evidentia.CatalogOption) (*evidentia.Catalog, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRewriterModel(c.String("rewriter-model")),
		ai.WithEmbeddingDimensions(c.Int("embedding-dimensions")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []evidentia.CatalogOption{
		evidentia.WithAIConfig(aiConfig),
		evidentia.WithMinStudies(c.Int("min-studies")),
	}
	if key := c.String("pubmed-api-key"); key != "" {
		opts = append(opts, evidentia.WithPubMedAPIKey(key))
	}
	opts = append(opts, extra...)

	return evidentia.NewCatalog(c.String("db"), opts...)
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var catalogOpts []evidentia.CatalogOption
	if c.Bool("sync-discovery") {
		catalogOpts = append(catalogOpts, evidentia.WithSyncDiscovery())
	}

	catalog, err := openCatalog(c, catalogOpts...)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalog.Close()

	srv, err := catalog.NewServer()
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx, c.String("addr"))
	})

	if c.Bool("worker") {
		worker, err := catalog.NewWorker()
		if err != nil {
			return fmt.Errorf("failed to create worker: %w", err)
		}
		defer worker.Release()
		g.Go(func() error {
			return worker.Run(ctx)
		})
	}

	return g.Wait()
}

func workerCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := openCatalog(c)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalog.Close()

	worker, err := catalog.NewWorker(discovery.WithPoolSize(c.Int("pool-size")))
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	defer worker.Release()

	slog.Info("discovery worker started", "db", c.String("db"))
	return worker.Run(ctx)
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	// Open storage
	stores, err := badger.OpenStores(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEmbeddingDimensions(c.Int("embedding-dimensions")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create reindexing config
	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reindexer
	reindexer := reindex.NewReindexer(stores.Supplements, embedder, reindexConfig, os.Stderr)

	// Run reindexing
	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
