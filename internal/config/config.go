package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds service configuration, read from environment variables.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`

	PostgresUser     string `env:"POSTGRES_USER" env-default:"barterhub"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" env-default:"barterhub_pass"`
	PostgresDB       string `env:"POSTGRES_DB" env-default:"barterhub"`
	PostgresHost     string `env:"POSTGRES_HOST" env-default:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" env-default:"5432"`
	PostgresSSLMode  string `env:"DATABASE_SSLMODE" env-default:"disable"`

	ServerAddr    string `env:"SERVER_ADDR" env-default:"0.0.0.0:8080"`
	MigrationsDir string `env:"MIGRATIONS_DIR" env-default:"internal/migrations"`

	SessionTTL          time.Duration `env:"SESSION_TTL" env-default:"24h"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" env-default:"barterhub_session"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" env-default:"false"`

	// KafkaBrokers is a comma-separated list; empty disables event
	// publishing.
	KafkaBrokers string `env:"KAFKA_BROKERS" env-default:""`
	KafkaTopic   string `env:"KAFKA_TOPIC" env-default:"barterhub.trade.offers"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB, cfg.PostgresSSLMode)
	}
	return &cfg, nil
}

// Brokers splits KafkaBrokers into a clean list.
func (c *Config) Brokers() []string {
	out := []string{}
	for _, p := range strings.Split(c.KafkaBrokers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
