package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config carries every runtime knob for the service. Values come from the
// environment with development defaults; nothing is read from global state
// after Load returns.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":5000"`

	// DatabaseDriver selects the SQL backend: "sqlite" (default) or "postgres".
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string `env:"DATABASE_DSN" envDefault:"vulnerable_bank.db"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"supersecret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// UnsafeMode re-enables the historically vulnerable behaviors this lab
	// exists to demonstrate: MD5 password digests and password resets on
	// arbitrary accounts. Never the default.
	UnsafeMode bool `env:"UNSAFE_MODE" envDefault:"false"`

	// SeedDemoData populates the demo users and sample transfers on startup
	// when the users table is empty.
	SeedDemoData bool `env:"SEED_DEMO_DATA" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", cfg.DatabaseDriver)
	}

	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	return cfg, nil
}
