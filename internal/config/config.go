package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig  `ignored:"true"`
	Auth     AuthConfig    `ignored:"true"`
	Coupon   CouponConfig  `ignored:"true"`
	Catalog  CatalogConfig `ignored:"true"`
	Session  SessionConfig `ignored:"true"`
	Cart     CartConfig    `ignored:"true"`
	Payment  PaymentConfig `ignored:"true"`
	Viewer   ViewerConfig  `ignored:"true"`
	LogLevel string        `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	ReadTimeout     int      `envconfig:"READ_TIMEOUT" default:"15"`
	WriteTimeout    int      `envconfig:"WRITE_TIMEOUT" default:"15"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`
	AllowedOrigins  []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type AuthConfig struct {
	APIKeys []string `envconfig:"API_KEYS" default:"apitest"` // Valid API keys for admin endpoints
}

// CouponConfig lists coupon sources. Each entry is an http(s) URL or a local
// path to a JSON-lines file, optionally gzipped. Empty means the seed catalog.
type CouponConfig struct {
	Sources []string `envconfig:"COUPON_SOURCES"`
}

type CatalogConfig struct {
	File string `envconfig:"CATALOG_FILE"`
}

type SessionConfig struct {
	Secret        string        `envconfig:"SESSION_SECRET" default:"storefront-dev-secret-change-me"`
	CookieName    string        `envconfig:"SESSION_COOKIE" default:"storefront-session"`
	MaxAge        int           `envconfig:"SESSION_MAX_AGE" default:"86400"`
	Secure        bool          `envconfig:"SESSION_SECURE" default:"false"`
	IdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

type CartConfig struct {
	Store    string `envconfig:"CART_STORE" default:"memory"`
	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

type PaymentConfig struct {
	LinkBase       string `envconfig:"PAYMENT_LINK_BASE" default:"https://pay.example.com/checkout"`
	CurrencySymbol string `envconfig:"CURRENCY_SYMBOL" default:"₹"`
}

type ViewerConfig struct {
	ResourcePrefix string `envconfig:"RESOURCE_PREFIX" default:"/api/resources"`
}

// Load reads an optional .env file and then configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	targets := []any{
		cfg,
		&cfg.Server,
		&cfg.Auth,
		&cfg.Coupon,
		&cfg.Catalog,
		&cfg.Session,
		&cfg.Cart,
		&cfg.Payment,
		&cfg.Viewer,
	}
	for _, target := range targets {
		if err := envconfig.Process("", target); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 bytes")
	}

	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session idle timeout and sweep interval must be positive")
	}

	switch c.Cart.Store {
	case "memory":
	case "redis":
		if c.Cart.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CART_STORE=redis")
		}
	default:
		return fmt.Errorf("invalid cart store: %s (must be memory or redis)", c.Cart.Store)
	}

	if _, err := url.ParseRequestURI(c.Payment.LinkBase); err != nil {
		return fmt.Errorf("invalid PAYMENT_LINK_BASE: %w", err)
	}

	if !strings.HasPrefix(c.Viewer.ResourcePrefix, "/") {
		return fmt.Errorf("RESOURCE_PREFIX must be an absolute path")
	}

	return nil
}
