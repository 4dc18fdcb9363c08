// Package config loads the process configuration once at startup into
// an immutable value. Nothing here reads the environment after Load
// returns.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// minSecretLen matches the token service's HS256 requirement.
const minSecretLen = 32

// Config is the full service configuration.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// JWTSecret signs access tokens, RefreshSecret signs refresh
	// tokens. Both are required; there is deliberately no fallback
	// value, a guessable default would defeat the authorization model.
	JWTSecret     string `env:"JWT_SECRET"`
	RefreshSecret string `env:"REFRESH_SECRET"`

	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`

	// DatabaseURL selects the postgres user store; empty falls back to
	// the in-memory store (development only). RedisAddr likewise
	// selects the shared rate limit store.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`
}

// Load parses and validates configuration from the environment.
// A missing or unusable signing secret is an error; main treats that
// as fatal.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < minSecretLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.RefreshSecret == "" {
		return errors.New("REFRESH_SECRET is not set")
	}
	if len(c.RefreshSecret) < minSecretLen {
		return fmt.Errorf("REFRESH_SECRET must be at least %d bytes", minSecretLen)
	}
	if c.JWTSecret == c.RefreshSecret {
		return errors.New("JWT_SECRET and REFRESH_SECRET must not share a value")
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMax <= 0 {
		return errors.New("rate limit window and ceiling must be positive")
	}
	return nil
}
