package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/memalerts/rewards-backend/api/routes"
	"github.com/memalerts/rewards-backend/internal/channels"
	"github.com/memalerts/rewards-backend/internal/identities"
	"github.com/memalerts/rewards-backend/internal/relay"
	"github.com/memalerts/rewards-backend/internal/rewards"
	"github.com/memalerts/rewards-backend/internal/wallets"
	twitchwebhook "github.com/memalerts/rewards-backend/internal/webhooks/twitch"
	"github.com/memalerts/rewards-backend/pkg/config"
	"github.com/memalerts/rewards-backend/pkg/counter"
	"github.com/memalerts/rewards-backend/pkg/db"
	"github.com/memalerts/rewards-backend/pkg/logger"
	"github.com/memalerts/rewards-backend/pkg/metrics"
	"github.com/memalerts/rewards-backend/pkg/migrate"
	"github.com/memalerts/rewards-backend/pkg/realtime"
	"github.com/memalerts/rewards-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; without it counters fall back to in-process state.
	var redisPinger db.Pinger
	counterStore := counter.Store(counter.NewMemory())
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		counterStore = counter.NewRedis(redisClient)
	}

	registry := prometheus.NewRegistry()
	rewardMetrics := metrics.NewRewardMetrics(registry)

	hub := realtime.NewHub(logg)

	relaySvc := relay.New(relay.Params{
		Hub:     hub,
		Peers:   cfg.Relay.Peers(),
		Secret:  cfg.Relay.SharedSecret,
		Timeout: cfg.Relay.Timeout,
		Logger:  logg,
		Metrics: rewardMetrics,
	})

	channelRepo := channels.NewRepository(dbClient.DB())
	walletRepo := wallets.NewRepository(dbClient.DB())
	walletSvc := wallets.NewService(walletRepo)

	rewardsSvc, err := rewards.NewService(rewards.ServiceParams{
		Repo:     rewards.NewRepository(dbClient.DB()),
		Wallets:  walletSvc,
		Channels: channelRepo,
		Metrics:  rewardMetrics,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}

	identitySvc, err := identities.NewService(identities.ServiceParams{
		Repo:      identities.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Claims:    rewardsSvc,
		Publisher: relaySvc,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identities service", err)
		os.Exit(1)
	}

	twitchSvc, err := twitchwebhook.NewService(twitchwebhook.ServiceParams{
		Tx:         dbClient,
		Channels:   channelRepo,
		Identities: identitySvc,
		Ledger:     rewardsSvc,
		Publisher:  relaySvc,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create twitch webhook service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DBPinger:     dbClient,
		RedisPinger:  redisPinger,
		CounterStore: counterStore,
		Hub:          hub,
		Relay:        relaySvc,
		Wallets:      walletSvc,
		WalletsRepo:  walletRepo,
		Identities:   identitySvc,
		Twitch:       twitchSvc,
		Metrics:      registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"peers": len(cfg.Relay.Peers()),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
