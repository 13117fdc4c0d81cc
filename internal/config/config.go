// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Server  ServerConfig
	CoinCap CoinCapConfig `mapstructure:"coincap"`
	Redis   RedisConfig
	Cache   CacheConfig
	Worker  WorkerConfig
	Session SessionConfig
	Log     LogConfig
	Quote   QuoteConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	ServeSwagger    bool   `mapstructure:"serve_swagger"`
	ServeAsynqmon   bool   `mapstructure:"serve_asynqmon"`
	RedirectBaseURL string `mapstructure:"redirect_base_url"`
}

// CoinCapConfig holds settings for the CoinCap rate feed.
type CoinCapConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout_sec"`
	// FallbackBaseURL is an optional mirror tried when the primary fails.
	FallbackBaseURL string `mapstructure:"fallback_base_url"`
}

// RedisConfig holds the addresses of both Redis instances. An empty address
// disables the feature that needs it.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // task queue for scheduled rate refreshes
	CacheAddr string `mapstructure:"cache_addr"` // shared rate cache
}

// CacheConfig holds caching settings.
type CacheConfig struct {
	RatesTTLSec int `mapstructure:"rates_ttl_sec"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency int    `mapstructure:"concurrency"`
	MaxRetry    int    `mapstructure:"max_retry"`
	TimeoutSec  int    `mapstructure:"timeout_sec"`
	RefreshCron string `mapstructure:"refresh_cron"`
}

// SessionConfig holds form session lifetime settings.
type SessionConfig struct {
	IdleTTLSec       int `mapstructure:"idle_ttl_sec"`
	SweepIntervalSec int `mapstructure:"sweep_interval_sec"`
	MaxActive        int `mapstructure:"max_active"` // 0 means unbounded
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Env   string `mapstructure:"env"` // "production" or "development"
	Level string `mapstructure:"level"`
}

// QuoteConfig holds the pricing parameters as decimal strings.
type QuoteConfig struct {
	Markup  string `mapstructure:"markup"`
	MinFiat string `mapstructure:"min_fiat"`
	MaxFiat string `mapstructure:"max_fiat"`
}

// Decimals parses the quote parameters.
func (q QuoteConfig) Decimals() (markup, minFiat, maxFiat decimal.Decimal, err error) {
	var errs []error
	parse := func(name, v string) decimal.Decimal {
		d, perr := decimal.NewFromString(strings.TrimSpace(v))
		if perr != nil {
			errs = append(errs, fmt.Errorf("quote.%s must be a decimal, got %q", name, v))
		}
		return d
	}
	markup = parse("markup", q.Markup)
	minFiat = parse("min_fiat", q.MinFiat)
	maxFiat = parse("max_fiat", q.MaxFiat)
	return markup, minFiat, maxFiat, errors.Join(errs...)
}

// RatesTTL returns the rate cache TTL.
func (c CacheConfig) RatesTTL() time.Duration {
	return time.Duration(c.RatesTTLSec) * time.Second
}

// IdleTTL returns how long an untouched session lives.
func (c SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLSec) * time.Second
}

// SweepInterval returns how often idle sessions are evicted.
func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", true)
	v.SetDefault("server.redirect_base_url", "https://digitalcoinranker.com/")
	v.SetDefault("coincap.base_url", "https://api.coincap.io/v2")
	v.SetDefault("coincap.api_key", "")
	v.SetDefault("coincap.timeout_sec", 5)
	v.SetDefault("coincap.fallback_base_url", "")
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("cache.rates_ttl_sec", 60)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.timeout_sec", 30)
	v.SetDefault("worker.refresh_cron", "@every 30s")
	v.SetDefault("session.idle_ttl_sec", 1800)
	v.SetDefault("session.sweep_interval_sec", 60)
	v.SetDefault("session.max_active", 10000)
	v.SetDefault("log.env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("quote.markup", "0.05")
	v.SetDefault("quote.min_fiat", "50")
	v.SetDefault("quote.max_fiat", "700")
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	if err := v.ReadInConfig(); err != nil {
		// no config file is fine, defaults and env cover everything
		fmt.Printf("Config file not found: %v\n", err)
	}
	return Load(v)
}

// Load unmarshals and validates configuration from v after applying defaults
// and the QUOTEFORM_ environment overrides.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("QUOTEFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// an empty address is how a Redis-backed feature is switched off
	v.AllowEmptyEnv(true)
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}
	if u, err := url.Parse(c.Server.RedirectBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("server.redirect_base_url must be an absolute URL, got %q", c.Server.RedirectBaseURL))
	}

	if c.CoinCap.BaseURL == "" {
		errs = append(errs, fmt.Errorf("coincap.base_url is required"))
	}
	if c.CoinCap.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("coincap.timeout_sec must be positive, got %d", c.CoinCap.Timeout))
	}

	if c.Redis.CacheAddr != "" && c.Cache.RatesTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.rates_ttl_sec must be positive, got %d", c.Cache.RatesTTLSec))
	}

	if c.Redis.AsynqAddr != "" {
		if c.Worker.Concurrency <= 0 {
			errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
		}
		if c.Worker.MaxRetry < 0 {
			errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
		}
		if c.Worker.TimeoutSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
		}
		if c.Worker.RefreshCron == "" {
			errs = append(errs, fmt.Errorf("worker.refresh_cron is required when redis.asynq_addr is set"))
		}
	}

	if c.Session.IdleTTLSec < 0 {
		errs = append(errs, fmt.Errorf("session.idle_ttl_sec must be non-negative, got %d", c.Session.IdleTTLSec))
	}
	if c.Session.SweepIntervalSec < 0 {
		errs = append(errs, fmt.Errorf("session.sweep_interval_sec must be non-negative, got %d", c.Session.SweepIntervalSec))
	}
	if c.Session.MaxActive < 0 {
		errs = append(errs, fmt.Errorf("session.max_active must be non-negative, got %d", c.Session.MaxActive))
	}

	switch c.Log.Env {
	case "production", "development":
	default:
		errs = append(errs, fmt.Errorf("log.env must be production or development, got %q", c.Log.Env))
	}

	markup, minFiat, maxFiat, err := c.Quote.Decimals()
	if err != nil {
		errs = append(errs, err)
	} else {
		if markup.IsNegative() {
			errs = append(errs, fmt.Errorf("quote.markup must be non-negative, got %s", markup))
		}
		if minFiat.GreaterThan(maxFiat) {
			errs = append(errs, fmt.Errorf("quote.min_fiat %s exceeds quote.max_fiat %s", minFiat, maxFiat))
		}
	}

	return errors.Join(errs...)
}
