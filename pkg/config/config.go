package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env             string        `env:"APP_ENV" env-default:"development"`
		Port            int           `env:"APP_PORT" env-default:"8080"`
		SentryUrl       string        `env:"SENTRY_URL"`
		ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	}
	Graph struct {
		BaseURL       string        `env:"GRAPH_BASE_URL" env-default:"https://graph.facebook.com"`
		Version       string        `env:"GRAPH_VERSION" env-default:"v2.7"`
		Timeout       time.Duration `env:"GRAPH_TIMEOUT" env-default:"30s"`
		InsightMetric string        `env:"GRAPH_INSIGHT_METRIC" env-default:"post_impressions_unique"`
	}
	Session struct {
		Backend      string        `env:"SESSION_BACKEND" env-default:"postgres"`
		CookieName   string        `env:"SESSION_COOKIE" env-default:"pm_session"`
		TTL          time.Duration `env:"SESSION_TTL" env-default:"336h"`
		CleanupCron  string        `env:"SESSION_CLEANUP_CRON" env-default:"0 3 * * *"`
		SecureCookie bool          `env:"SESSION_SECURE_COOKIE" env-default:"false"`
		// UserToken stands in for the external OAuth login during development.
		UserToken string `env:"FACEBOOK_USER_TOKEN"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Redis struct {
		Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" env-default:"0"`
	}
	RateLimit struct {
		Requests int           `env:"PUBLISH_RATE_REQUESTS" env-default:"5"`
		Per      time.Duration `env:"PUBLISH_RATE_PER" env-default:"1m"`
		Burst    int           `env:"PUBLISH_RATE_BURST" env-default:"3"`
	}
	Telemetry struct {
		OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		ServiceName  string `env:"OTEL_SERVICE_NAME" env-default:"fb-post-manager"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the lib/pq keyword DSN used by goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

// GetPoolURL returns the connection URL used by pgxpool.
func (c *Config) GetPoolURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
