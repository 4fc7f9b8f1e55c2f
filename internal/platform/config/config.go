package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Per-organization tenant-id overrides for the subdomain resolver.
	// Defaults match the hard-coded slug table.
	TenantB3ID      string `env:"TENANT_B3_ID" default:"1"`
	TenantHorizonID string `env:"TENANT_HORIZON_ID" default:"2"`
	TenantUnityID   string `env:"TENANT_UNITY_ID" default:"3"`

	// StrictTenancy rejects requests from unknown subdomains and turns a
	// failed tenant bind into an error instead of the fail-open default.
	StrictTenancy bool `env:"STRICT_TENANCY" default:"false"`

	// TenantBindTimeout bounds the set_config round trip when binding a
	// tenant context to a pooled connection.
	TenantBindTimeout time.Duration `env:"TENANT_BIND_TIMEOUT" default:"2s"`

	// Email delivery is optional; notifications are skipped without a key.
	EmailAPIKey  string `env:"EMAIL_API_KEY"`
	EmailBaseURL string `env:"EMAIL_BASE_URL" default:"https://api.resend.com"`
	EmailFrom    string `env:"EMAIL_FROM" default:"notifications@clientpulse.app"`

	AnalysisRatePerSecond float64 `env:"ANALYSIS_RATE_PER_SECOND" default:"5"`
	AnalysisRateBurst     int     `env:"ANALYSIS_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// TenantOverrides returns the configured slug → tenant-id override table.
func (c *Config) TenantOverrides() map[string]string {
	return map[string]string{
		"b3":      c.TenantB3ID,
		"horizon": c.TenantHorizonID,
		"unity":   c.TenantUnityID,
	}
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"REDIS_URL":      cfg.RedisURL,
		"SESSION_SECRET": cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret))
	}

	if cfg.TenantBindTimeout <= 0 {
		return fmt.Errorf("TENANT_BIND_TIMEOUT must be positive")
	}

	if cfg.AnalysisRatePerSecond <= 0 || cfg.AnalysisRateBurst <= 0 {
		return fmt.Errorf("analysis rate limit values must be positive")
	}

	return nil
}
