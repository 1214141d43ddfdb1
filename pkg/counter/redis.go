package counter

import (
	"context"
	"time"

	"github.com/memalerts/rewards-backend/pkg/redis"
)

// Redis delegates to the shared redis client's INCR+EXPIRE helper so counts
// are shared by every instance pointed at the same backend.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps the provided redis client as a Store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return r.client.IncrWithTTL(ctx, key, ttl)
}
