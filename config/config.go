package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string `env:"DATABASE_URL"`

	// Store configuration
	CardLockDuration  time.Duration   `env:"CARD_LOCK_DURATION"`
	ConsumeOnPurchase bool            `env:"CONSUME_ON_PURCHASE"`
	GambleCost        decimal.Decimal `env:"-"`

	// Environment: "development", "production" or "test"
	Environment string `env:"ENVIRONMENT"`
}

var (
	mu       sync.Mutex
	instance *Config
)

// Get returns the global configuration instance, loading it on first use.
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		cfg, err := load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
		instance = cfg
	}
	return instance
}

// SetTestConfig replaces the global configuration. Tests only.
func SetTestConfig(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// NewTestConfig returns a configuration suitable for tests.
func NewTestConfig() *Config {
	return &Config{
		CardLockDuration:  15 * time.Minute,
		ConsumeOnPurchase: true,
		GambleCost:        decimal.NewFromInt(5),
		Environment:       "test",
	}
}

// load reads configuration from the environment, with an optional .env file.
func load() (*Config, error) {
	// A missing .env file is fine; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		CardLockDuration:  15 * time.Minute,
		ConsumeOnPurchase: true,
		GambleCost:        decimal.NewFromInt(5),
		Environment:       "development",
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("env.Parse: %w", err)
	}

	if raw := os.Getenv("GAMBLE_COST"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GAMBLE_COST %q: %w", raw, err)
		}
		cfg.GambleCost = cost
	}

	if cfg.Environment != "test" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return cfg, nil
}
