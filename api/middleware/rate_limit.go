package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/memalerts/rewards-backend/api/responses"
	"github.com/memalerts/rewards-backend/pkg/counter"
	pkgerrors "github.com/memalerts/rewards-backend/pkg/errors"
	"github.com/memalerts/rewards-backend/pkg/logger"
)

// WebhookRateLimitPolicy throttles webhook ingestion per source IP.
type WebhookRateLimitPolicy struct {
	Window time.Duration
	Limit  int
}

func (p WebhookRateLimitPolicy) enabled() bool {
	return p.Window > 0 && p.Limit > 0
}

// WebhookRateLimit rejects sources that exceed the per-window delivery limit.
// The counter store is pluggable: in-process by default, redis when multiple
// instances need a shared view.
func WebhookRateLimit(policy WebhookRateLimitPolicy, store counter.Store, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			count, err := store.IncrWithTTL(ctx, "rl:webhook:"+ip, policy.Window)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if count > int64(policy.Limit) {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
					})
					logg.Warn(logCtx, "webhook.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
