package counter

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryIncrWithTTL(t *testing.T) {
	store := NewMemory()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWithTTL(context.Background(), "k", time.Minute)
		if err != nil {
			t.Fatalf("IncrWithTTL error: %v", err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}
}

func TestMemoryWindowExpiry(t *testing.T) {
	store := NewMemory()
	current := time.Now()
	store.now = func() time.Time { return current }

	if _, err := store.IncrWithTTL(context.Background(), "k", time.Minute); err != nil {
		t.Fatalf("IncrWithTTL error: %v", err)
	}

	current = current.Add(2 * time.Minute)
	got, err := store.IncrWithTTL(context.Background(), "k", time.Minute)
	if err != nil {
		t.Fatalf("IncrWithTTL error: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected fresh window after expiry, got count %d", got)
	}
}

func TestMemoryConcurrentIncrements(t *testing.T) {
	store := NewMemory()

	const workers = 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := store.IncrWithTTL(context.Background(), "shared", time.Minute); err != nil {
				t.Errorf("IncrWithTTL error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.IncrWithTTL(context.Background(), "shared", time.Minute)
	if err != nil {
		t.Fatalf("IncrWithTTL error: %v", err)
	}
	if got != workers+1 {
		t.Fatalf("expected %d after %d concurrent increments, got %d", workers+1, workers, got)
	}
}
