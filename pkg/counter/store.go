package counter

import (
	"context"
	"time"
)

// Store is an atomic increment-with-expiry counter. Call sites pick one
// implementation at startup instead of branching on backend availability
// inline: the redis-backed store when a distributed backend is configured,
// the in-process store otherwise.
type Store interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
