package contact

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreAssignsMonotonicIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Insert(ctx, Submission{Name: "A", Email: "a@b.com", Subject: "S", Message: "M"})
	if err != nil {
		t.Fatalf("Insert err: %v", err)
	}
	second, err := store.Insert(ctx, Submission{Name: "B", Email: "b@b.com", Subject: "S", Message: "M"})
	if err != nil {
		t.Fatalf("Insert err: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("unexpected ids: %d %d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be assigned")
	}
}

func TestMemoryStoreConcurrentInsertsAreUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Insert(ctx, Submission{Name: "A"}); err != nil {
				t.Errorf("Insert err: %v", err)
			}
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, item := range store.List() {
		if seen[item.ID] {
			t.Fatalf("duplicate id %d", item.ID)
		}
		seen[item.ID] = true
	}
	if len(seen) != 50 {
		t.Fatalf("expected 50 records, got %d", len(seen))
	}
}
