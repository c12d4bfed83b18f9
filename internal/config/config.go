package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Drivers for the store and the lock.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds service configuration.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	DBMaxConns    int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	ServerAddr    string `env:"SERVER_ADDR" envDefault:"0.0.0.0:8080"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"internal/migrations"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	LockDriver  string `env:"LOCK_DRIVER" envDefault:"redis"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LockWait          time.Duration `env:"LOCK_WAIT" envDefault:"3s"`
	LockLease         time.Duration `env:"LOCK_LEASE" envDefault:"5s"`
	LockRetryInterval time.Duration `env:"LOCK_RETRY_INTERVAL" envDefault:"50ms"`
	RejectUsesLock    bool          `env:"MATCH_REJECT_USES_LOCK" envDefault:"false"`

	DispatchWorkers      int           `env:"DISPATCH_WORKERS" envDefault:"5"`
	DispatchQueueSize    int           `env:"DISPATCH_QUEUE_SIZE" envDefault:"100"`
	DispatchEventTimeout time.Duration `env:"DISPATCH_EVENT_TIMEOUT" envDefault:"10s"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackPerMinute  int    `env:"SLACK_ALERTS_PER_MINUTE" envDefault:"30"`

	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`

	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// postgresEnv builds a DSN when DATABASE_URL is not set.
type postgresEnv struct {
	User     string `env:"POSTGRES_USER" envDefault:"match_hub"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"match_hub_pass"`
	DB       string `env:"POSTGRES_DB" envDefault:"match_hub"`
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
	SSLMode  string `env:"DATABASE_SSLMODE" envDefault:"disable"`
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DatabaseURL == "" {
		var pg postgresEnv
		if err := env.Parse(&pg); err != nil {
			return nil, fmt.Errorf("parse env: %w", err)
		}
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", pg.User, pg.Password, pg.Host, pg.Port, pg.DB, pg.SSLMode)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.LockDriver = strings.ToLower(strings.TrimSpace(cfg.LockDriver))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver names and the lock timings.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverPostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.LockDriver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown lock driver %q", c.LockDriver)
	}
	if c.LockWait < 0 || c.LockLease <= 0 {
		return fmt.Errorf("lock wait must be >= 0 and lease > 0")
	}
	if c.DispatchWorkers <= 0 || c.DispatchQueueSize <= 0 {
		return fmt.Errorf("dispatch workers and queue size must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
