package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Provision triggers the idempotent seed of levels, permissions, grants
	// and the default administrator at startup.
	Provision bool `env:"PROVISION, default=false"`

	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Admin    AdminConfig
}

type SessionConfig struct {
	TTL         time.Duration `env:"SESSION_TTL,          default=24h"`
	RememberTTL time.Duration `env:"SESSION_REMEMBER_TTL, default=720h"`
	// ResetSecret signs short-lived password-reset tokens. Session tokens
	// themselves are opaque and unsigned.
	ResetSecret string `env:"RESET_TOKEN_SECRET"`
	// CookieSecure should only be disabled for local development.
	CookieSecure bool `env:"SESSION_COOKIE_SECURE, default=true"`
}

// PostgresConfig carries the two Supabase credential tiers: the restricted
// DSN serves the request path, the service DSN administrative writes
// (provisioning). Both are treated as opaque connection parameters.
type PostgresConfig struct {
	URL        string `env:"DATABASE_URL,         default=postgres://localhost:5432/admin_portal"`
	ServiceURL string `env:"SERVICE_DATABASE_URL"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type AdminConfig struct {
	Email     string `env:"ADMIN_EMAIL"`
	Password  string `env:"ADMIN_PASSWORD"`
	FirstName string `env:"ADMIN_FIRST_NAME, default=System"`
	LastName  string `env:"ADMIN_LAST_NAME,  default=Administrator"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Postgres.ServiceURL == "" {
		cfg.Postgres.ServiceURL = cfg.Postgres.URL
	}
	return &cfg, nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
