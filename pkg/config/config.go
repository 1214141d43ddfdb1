package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Relay        RelayConfig
	Realtime     RealtimeConfig
	RateLimit    RateLimitConfig
	Webhooks     WebhooksConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Relay.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MEMALERTS_APP_ENV" required:"true"`
	Port         string `envconfig:"MEMALERTS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEMALERTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEMALERTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MEMALERTS_DB_DSN"`
	Driver string `envconfig:"MEMALERTS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEMALERTS_DB_HOST"`
	LegacyPort     int    `envconfig:"MEMALERTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEMALERTS_DB_USER"`
	LegacyPassword string `envconfig:"MEMALERTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEMALERTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEMALERTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEMALERTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEMALERTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEMALERTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEMALERTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEMALERTS_REDIS_URL"`
	Address      string        `envconfig:"MEMALERTS_REDIS_ADDR"`
	Password     string        `envconfig:"MEMALERTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEMALERTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEMALERTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEMALERTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEMALERTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEMALERTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEMALERTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The service
// degrades to in-process counters when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// RelayConfig describes the peer instances that share this deployment's
// database but hold their own realtime connections.
type RelayConfig struct {
	PeerURLs     []string      `envconfig:"MEMALERTS_RELAY_PEER_URLS"`
	SharedSecret string        `envconfig:"MEMALERTS_RELAY_SHARED_SECRET" default:"wallet-updated"`
	Timeout      time.Duration `envconfig:"MEMALERTS_RELAY_TIMEOUT" default:"2s"`
}

func (r RelayConfig) validate() error {
	for _, peer := range r.PeerURLs {
		if _, err := url.ParseRequestURI(strings.TrimSpace(peer)); err != nil {
			return fmt.Errorf("invalid relay peer url %q: %w", peer, err)
		}
	}
	return nil
}

// Peers returns the trimmed, non-empty peer base URLs.
func (r RelayConfig) Peers() []string {
	peers := make([]string, 0, len(r.PeerURLs))
	for _, peer := range r.PeerURLs {
		if trimmed := strings.TrimRight(strings.TrimSpace(peer), "/"); trimmed != "" {
			peers = append(peers, trimmed)
		}
	}
	return peers
}

type RealtimeConfig struct {
	WriteTimeout   time.Duration `envconfig:"MEMALERTS_REALTIME_WRITE_TIMEOUT" default:"10s"`
	PongTimeout    time.Duration `envconfig:"MEMALERTS_REALTIME_PONG_TIMEOUT" default:"60s"`
	SendBufferSize int           `envconfig:"MEMALERTS_REALTIME_SEND_BUFFER" default:"64"`
}

type RateLimitConfig struct {
	WebhookWindow time.Duration `envconfig:"MEMALERTS_RATE_LIMIT_WEBHOOK_WINDOW" default:"1m"`
	WebhookLimit  int           `envconfig:"MEMALERTS_RATE_LIMIT_WEBHOOK_LIMIT" default:"600"`
}

type WebhooksConfig struct {
	TwitchSecret string `envconfig:"MEMALERTS_TWITCH_WEBHOOK_SECRET"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MEMALERTS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
