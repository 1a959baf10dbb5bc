package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

func pendingItem(query string) *core.DiscoveryItem {
	normalized := query
	return &core.DiscoveryItem{
		Id:         core.QueryHash(normalized),
		Query:      query,
		Normalized: normalized,
	}
}

func TestQueueUpsertNew(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	item, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if item.Status != core.StatusPending {
		t.Fatalf("Expected pending status, got %s", item.Status)
	}
	if item.SearchCount != 1 {
		t.Fatalf("Expected search count 1, got %d", item.SearchCount)
	}
	if item.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}
}

func TestQueueUpsertCollapses(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	if _, err := queue.Upsert(ctx, pendingItem("shilajit")); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	merged, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if merged.SearchCount != 2 {
		t.Fatalf("Expected search count 2, got %d", merged.SearchCount)
	}

	pending, err := queue.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending item, got %d", len(pending))
	}
}

func TestQueueStatusTransitions(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	item, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	processing, err := queue.UpdateStatus(ctx, item.Id, core.StatusProcessing, "")
	if err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	if processing.Status != core.StatusProcessing {
		t.Fatalf("Expected processing, got %s", processing.Status)
	}

	// No longer pending
	pending, err := queue.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("Expected 0 pending items, got %d", len(pending))
	}

	failed, err := queue.UpdateStatus(ctx, item.Id, core.StatusFailed, "insufficient evidence")
	if err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	if failed.Reason != "insufficient evidence" {
		t.Fatalf("Expected reason recorded, got '%s'", failed.Reason)
	}
	if failed.Retries != 1 {
		t.Fatalf("Expected 1 retry, got %d", failed.Retries)
	}
	if failed.ProcessedAt.IsZero() {
		t.Fatal("Expected ProcessedAt to be set")
	}
}

func TestQueueUpsertRequeuesFailedItem(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	item, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if _, err := queue.UpdateStatus(ctx, item.Id, core.StatusProcessing, ""); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	if _, err := queue.UpdateStatus(ctx, item.Id, core.StatusFailed, "insufficient evidence"); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	requeued, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if requeued.Status != core.StatusPending {
		t.Fatalf("Expected a re-enqueued failed item to be pending, got %s", requeued.Status)
	}
	if requeued.Reason != "" {
		t.Fatalf("Expected reason cleared, got '%s'", requeued.Reason)
	}
	if requeued.SearchCount != 2 {
		t.Fatalf("Expected search count 2, got %d", requeued.SearchCount)
	}

	pending, err := queue.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending item, got %d", len(pending))
	}
}

func TestQueueUpsertKeepsProcessingStatus(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	item, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if _, err := queue.UpdateStatus(ctx, item.Id, core.StatusProcessing, ""); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	// An in-flight item stays with its worker
	merged, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if merged.Status != core.StatusProcessing {
		t.Fatalf("Expected processing, got %s", merged.Status)
	}
	if merged.SearchCount != 2 {
		t.Fatalf("Expected search count 2, got %d", merged.SearchCount)
	}

	pending, err := queue.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("Expected 0 pending items, got %d", len(pending))
	}
}

func TestQueueReclaimProcessing(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	stuck, err := queue.Upsert(ctx, pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if _, err := queue.UpdateStatus(ctx, stuck.Id, core.StatusProcessing, ""); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	done, err := queue.Upsert(ctx, pendingItem("ashwagandha"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if _, err := queue.UpdateStatus(ctx, done.Id, core.StatusProcessing, ""); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}
	if _, err := queue.UpdateStatus(ctx, done.Id, core.StatusCompleted, ""); err != nil {
		t.Fatalf("Failed to update status: %v", err)
	}

	reclaimed, err := queue.ReclaimProcessing(ctx)
	if err != nil {
		t.Fatalf("Failed to reclaim: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("Expected 1 reclaimed item, got %d", reclaimed)
	}

	pending, err := queue.ListPending(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Id != stuck.Id {
		t.Fatalf("Expected the abandoned item back in pending, got %v", pending)
	}

	completed, err := queue.GetItem(ctx, done.Id)
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if completed.Status != core.StatusCompleted {
		t.Fatalf("Expected completed item untouched, got %s", completed.Status)
	}
}

func TestQueueUpdateStatusMissing(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	_, err = stores.Queue.UpdateStatus(context.Background(), core.QueryHash("ghost"), core.StatusProcessing, "")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestQueueListPendingOrderAndLimit(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	queue := stores.Queue

	for _, query := range []string{"first term", "second term", "third term"} {
		if _, err := queue.Upsert(ctx, pendingItem(query)); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	pending, err := queue.ListPending(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending items, got %d", len(pending))
	}
	if pending[0].Query != "first term" {
		t.Fatalf("Expected oldest first, got '%s'", pending[0].Query)
	}
}

func TestQueueSubscribeDeliversNewItems(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := stores.Queue
	received := make(chan core.ID, 4)

	go func() {
		queue.Subscribe(ctx, func(id core.ID) error {
			received <- id
			return nil
		})
	}()

	// Give the subscription a moment to register
	time.Sleep(100 * time.Millisecond)

	item, err := queue.Upsert(context.Background(), pendingItem("shilajit"))
	if err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	select {
	case id := <-received:
		if id != item.Id {
			t.Fatalf("Expected %d, got %d", item.Id, id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for subscription delivery")
	}
}
