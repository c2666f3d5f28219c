// Package config loads the server configuration from the environment.
// A .env file, if present, is loaded first; real environment variables
// win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort               = "8080"
	DefaultDBPath             = "data/praktyka.db"
	DefaultTokenTTL           = 168 * time.Hour
	DefaultFakturowniaTimeout = 10 * time.Second
	DefaultLogLevel           = "info"
)

// Config is the full server configuration.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	LogLevel  string
	AppEnv    string

	FakturowniaTimeout time.Duration

	// AMQP settings are optional. An empty URL disables event
	// publishing entirely.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Development reports whether the server runs in development mode,
// where error responses may carry internal detail.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

// EventsEnabled reports whether a message broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Load reads the configuration from .env and the environment.
func Load() (*Config, error) {
	// Missing .env is fine, the environment alone may be complete.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", DefaultPort),
		DBPath:             getEnv("SQLITE_DB_PATH", DefaultDBPath),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		LogLevel:           getEnv("LOG_LEVEL", DefaultLogLevel),
		AppEnv:             getEnv("APP_ENV", "production"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "praktyka"),
		AMQPQueue:          getEnv("AMQP_QUEUE", "praktyka.invoices"),
		TokenTTL:           DefaultTokenTTL,
		FakturowniaTimeout: DefaultFakturowniaTimeout,
	}

	var errs []error
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
		} else {
			cfg.TokenTTL = ttl
		}
	}
	if raw := os.Getenv("FAKTUROWNIA_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("FAKTUROWNIA_TIMEOUT: %w", err))
		} else {
			cfg.FakturowniaTimeout = timeout
		}
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.FakturowniaTimeout <= 0 {
		errs = append(errs, errors.New("FAKTUROWNIA_TIMEOUT must be positive"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	return errs
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
