package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the FitCoin service.
type Config struct {
	AppEnv  string `mapstructure:"-"`
	AppName string `mapstructure:"app_name"`

	HTTP      HTTPConfig      `mapstructure:"http" validate:"required"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Redis     RedisConfig     `mapstructure:"redis" validate:"required"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// HTTPConfig configures the JSON API listener.
type HTTPConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port" validate:"required,gte=1,lte=65535"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port pair the server binds to.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggerConfig controls log output format, level and file rotation.
type LoggerConfig struct {
	Level  string        `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File   FileLogConfig `mapstructure:"file"`
}

// FileLogConfig enables rotated file output alongside stdout.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// RedisConfig points at the session store backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ChainConfig tunes the simulated blockchain service.
type ChainConfig struct {
	LatencyMS int `mapstructure:"latency_ms" validate:"omitempty,gte=0"`
}

// TrackerConfig tunes the activity accrual loop.
type TrackerConfig struct {
	Interval string `mapstructure:"interval"`
}

// ParseInterval returns the accrual tick interval, defaulting to one second.
func (c TrackerConfig) ParseInterval() (time.Duration, error) {
	if c.Interval == "" {
		return time.Second, nil
	}
	return time.ParseDuration(c.Interval)
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	DSN              string  `mapstructure:"dsn"`
	Environment      string  `mapstructure:"environment"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

// TelegramConfig enables the companion bot when a token is present.
type TelegramConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Token       string `mapstructure:"token"`
	PollTimeout string `mapstructure:"poll_timeout"`
}

// CatalogConfig selects where marketplace items come from.
type CatalogConfig struct {
	Source        string `mapstructure:"source" validate:"omitempty,oneof=memory postgres"`
	DatabaseURL   string `mapstructure:"database_url"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// RateLimitConfig guards the mutating API endpoints.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoints EndpointRules `mapstructure:"endpoints"`
	PerClient RateLimitRule `mapstructure:"per_client"`
}

// EndpointRules carries per-endpoint limits.
type EndpointRules struct {
	Register RateLimitRule `mapstructure:"register"`
	Login    RateLimitRule `mapstructure:"login"`
	Purchase RateLimitRule `mapstructure:"purchase"`
}

// RateLimitRule pairs a request count with a window duration string.
type RateLimitRule struct {
	Limit  int    `mapstructure:"limit"`
	Window string `mapstructure:"window"`
}
