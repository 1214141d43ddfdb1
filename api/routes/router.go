package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/memalerts/rewards-backend/api/controllers"
	webhookcontrollers "github.com/memalerts/rewards-backend/api/controllers/webhooks"
	"github.com/memalerts/rewards-backend/api/middleware"
	"github.com/memalerts/rewards-backend/internal/identities"
	"github.com/memalerts/rewards-backend/internal/relay"
	"github.com/memalerts/rewards-backend/internal/wallets"
	"github.com/memalerts/rewards-backend/pkg/config"
	"github.com/memalerts/rewards-backend/pkg/counter"
	"github.com/memalerts/rewards-backend/pkg/db"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/realtime"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DBPinger     db.Pinger
	RedisPinger  db.Pinger
	CounterStore counter.Store
	Hub          *realtime.Hub
	Relay        *relay.Service
	Wallets      wallets.Service
	WalletsRepo  wallets.Repository
	Identities   identities.Service
	Twitch       webhookcontrollers.TwitchWebhookService
	Metrics      *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	webhookPolicy := middleware.WebhookRateLimitPolicy{
		Window: cfg.RateLimit.WebhookWindow,
		Limit:  cfg.RateLimit.WebhookLimit,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.WebhookRateLimit(webhookPolicy, deps.CounterStore, logg)).
			Post("/webhooks/twitch", webhookcontrollers.TwitchWebhook(deps.Twitch, cfg.Webhooks.TwitchSecret, logg))

		r.Get("/wallets", controllers.WalletList(deps.WalletsRepo, logg))
		r.Get("/wallets/{channelId}", controllers.WalletBalance(deps.Wallets, logg))

		r.Post("/identities/link", controllers.LinkIdentity(deps.Identities, logg))
	})

	r.Post(relay.Path, controllers.InternalWalletUpdated(deps.Relay, cfg.Relay.SharedSecret, logg))

	r.Get("/ws", controllers.Websocket(deps.Hub, cfg.Realtime, logg))

	return r
}
