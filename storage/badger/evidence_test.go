package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/evidentia/core"
	"github.com/poiesic/evidentia/storage"
)

func TestEvidenceCountRoundTrip(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	repo := stores.Evidence

	count := &core.EvidenceCount{
		Count:       523,
		OracleQuery: `"creatine"[Title/Abstract]`,
		CachedAt:    time.Now().UTC(),
	}
	if err := repo.PutCount(ctx, "Creatine", count); err != nil {
		t.Fatalf("Failed to put count: %v", err)
	}

	// Lookup is case-insensitive
	retrieved, err := repo.GetCount(ctx, "creatine")
	if err != nil {
		t.Fatalf("Failed to get count: %v", err)
	}
	if retrieved.Count != 523 {
		t.Fatalf("Expected 523, got %d", retrieved.Count)
	}
	if retrieved.OracleQuery != count.OracleQuery {
		t.Fatalf("Expected query preserved, got '%s'", retrieved.OracleQuery)
	}
}

func TestEvidenceCountMiss(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	_, err = stores.Evidence.GetCount(context.Background(), "nothing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
