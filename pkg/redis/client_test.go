package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	counts      map[string]int64
	expireCalls int
	lastTTL     time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: map[string]int64{}}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expireCalls++
	f.lastTTL = ttl
	return redis.NewBoolResult(true, nil)
}

func TestIncrWithTTLSetsExpiryOnFirstIncrementOnly(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := client.IncrWithTTL(ctx, "rl:webhook:1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("incr %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("expected count %d, got %d", want, got)
		}
	}

	if store.expireCalls != 1 {
		t.Fatalf("expected a single expire call, got %d", store.expireCalls)
	}
	if store.lastTTL != time.Minute {
		t.Fatalf("expected ttl 1m, got %s", store.lastTTL)
	}
}

func TestIncrWithTTLZeroTTLNeverExpires(t *testing.T) {
	store := newFakeStore()
	client := &Client{store: store}

	if _, err := client.IncrWithTTL(context.Background(), "k", 0); err != nil {
		t.Fatalf("incr: %v", err)
	}
	if store.expireCalls != 0 {
		t.Fatalf("expected no expire call, got %d", store.expireCalls)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if _, err := client.IncrWithTTL(context.Background(), "k", time.Minute); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client: %v", err)
	}
}
