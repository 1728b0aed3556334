package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	Storage     string `env:"STORAGE" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	DatabaseURL string `env:"DATABASE_URL"                  validate:"required_if=Storage postgres"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"phone-insights.db" validate:"required_if=Storage sqlite"`

	JWTSecret  string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	JWTTTL     time.Duration `env:"JWT_TTL" envDefault:"24h" validate:"min=1m"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12" validate:"min=4,max=14"`

	NumverifyAPIKey  string        `env:"NUMVERIFY_API_KEY,required" validate:"required"`
	NumverifyBaseURL string        `env:"NUMVERIFY_BASE_URL" envDefault:"http://apilayer.net/api" validate:"required,url"`
	LookupTimeout    time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"8s" validate:"min=1s,max=30s"`

	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"1h" validate:"min=1s"`
	CacheSweepSchedule string        `env:"CACHE_SWEEP_SCHEDULE" envDefault:"@every 10m" validate:"required"`
	RedisURL           string        `env:"REDIS_URL"`

	SearchHistoryMax int `env:"SEARCH_HISTORY_MAX" envDefault:"200" validate:"min=1,max=1000"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
