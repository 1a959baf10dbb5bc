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


package discovery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

const (
	defaultWorkerPoolSize = 2

	// defaultOracleDelay paces queue processing against the evidence
	// oracle's 3 requests/second unauthenticated rate limit.
	defaultOracleDelay = 350 * time.Millisecond
)

// Worker drains the discovery queue in the background.
//
// Each queue item runs the full discovery sequence through the controller.
// Items transition pending -> processing -> completed or failed; a failed
// item stays failed and is never retried by the worker itself, since a
// term that lacked evidence five minutes ago still lacks it now.
type Worker struct {
	queue       storage.DiscoveryQueueRepository
	controller  *Controller
	invalidator *Invalidator
	pool        *ants.Pool
	oracleDelay time.Duration
	logger      *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is 2: discovery is oracle-bound, not CPU-bound.
func WithPoolSize(size int) WorkerOption {
	return func(w *Worker) error {
		if size < 1 {
			size = 1
		}
		if w.pool != nil {
			w.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		w.pool = pool
		return nil
	}
}

// WithOracleDelay sets the fixed delay applied before each item's oracle
// lookup. Zero disables pacing.
func WithOracleDelay(delay time.Duration) WorkerOption {
	return func(w *Worker) error {
		if delay < 0 {
			delay = 0
		}
		w.oracleDelay = delay
		return nil
	}
}

// WithWorkerLogger sets a custom logger.
// Default is slog.Default().
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWorker creates a new discovery worker.
func NewWorker(
	queue storage.DiscoveryQueueRepository,
	controller *Controller,
	invalidator *Invalidator,
	opts ...WorkerOption,
) (*Worker, error) {
	if queue == nil {
		return nil, ErrQueueRequired
	}
	if controller == nil {
		return nil, ErrControllerRequired
	}

	pool, err := ants.NewPool(defaultWorkerPoolSize)
	if err != nil {
		return nil, err
	}

	w := &Worker{
		queue:       queue,
		controller:  controller,
		invalidator: invalidator,
		pool:        pool,
		oracleDelay: defaultOracleDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			w.pool.Release()
			return nil, err
		}
	}

	return w, nil
}

// Release shuts down the worker pool.
func (w *Worker) Release() {
	w.pool.Release()
}

// Run processes the queue until ctx is cancelled.
//
// Items already pending when the worker starts are drained first, then the
// worker blocks on the queue subscription for new arrivals.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Drain(ctx); err != nil {
		return err
	}

	err := w.queue.Subscribe(ctx, func(id core.ID) error {
		return w.pool.Submit(func() {
			w.process(ctx, id)
		})
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Drain processes every currently pending item and returns.
//
// Items abandoned mid-flight by a previous worker are returned to pending
// first, so a crash between claiming an item and recording its outcome
// cannot strand it.
func (w *Worker) Drain(ctx context.Context) error {
	reclaimed, err := w.queue.ReclaimProcessing(ctx)
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		w.logger.Warn("reclaimed abandoned discovery items", "count", reclaimed)
	}

	pending, err := w.queue.ListPending(ctx, 0)
	if err != nil {
		return err
	}
	w.logger.Info("draining discovery queue", "pending", len(pending))

	for _, item := range pending {
		w.process(ctx, item.Id)
	}
	return nil
}

// process runs one queue item through discovery.
func (w *Worker) process(ctx context.Context, id core.ID) {
	item, err := w.queue.GetItem(ctx, id)
	if err != nil {
		w.logger.Error("queue item lookup failed", "id", id, "err", err)
		return
	}
	if item.Status != core.StatusPending {
		// Another worker goroutine got here first
		return
	}

	if _, err := w.queue.UpdateStatus(ctx, id, core.StatusProcessing, ""); err != nil {
		w.logger.Error("status transition failed", "id", id, "err", err)
		return
	}

	w.logger.Info("processing discovery item", "id", id, "query", item.Query, "searches", item.SearchCount)

	// Pace outbound oracle calls
	if w.oracleDelay > 0 {
		select {
		case <-time.After(w.oracleDelay):
		case <-ctx.Done():
			return
		}
	}

	outcome, err := w.controller.Discover(ctx, item.Query)
	if err != nil {
		if _, updateErr := w.queue.UpdateStatus(ctx, id, core.StatusFailed, err.Error()); updateErr != nil {
			w.logger.Error("status transition failed", "id", id, "err", updateErr)
		}
		if !errors.Is(err, ErrInsufficientEvidence) {
			w.logger.Error("discovery failed", "id", id, "query", item.Query, "err", err)
		}
		return
	}

	// Queries that previously missed must not keep serving the cached miss
	if w.invalidator != nil {
		w.invalidator.InvalidateFor(ctx, item.Query, item.Normalized, outcome.Record.Name)
	}

	if _, err := w.queue.UpdateStatus(ctx, id, core.StatusCompleted, ""); err != nil {
		w.logger.Error("status transition failed", "id", id, "err", err)
		return
	}

	w.logger.Info("discovery item completed",
		"id", id,
		"query", item.Query,
		"name", outcome.Record.Name,
		"created", outcome.Created)
}
