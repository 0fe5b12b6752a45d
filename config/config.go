package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the engine's runtime parameters, populated from environment
// variables (optionally via a local .env file).
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	// TickInterval is how often the competition driver runs.
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"30s"`
	// LineupWindow is how long before an encounter's match date lineups must
	// be in; overdue sides get an auto-generated lineup.
	LineupWindow time.Duration `envconfig:"LINEUP_WINDOW" default:"1h"`
	// RandSeed fixes the simulation RNG when non-zero. Zero seeds from the
	// clock.
	RandSeed int64  `envconfig:"RAND_SEED" default:"0"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the optional .env file and the environment. A missing .env is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("TICK_INTERVAL must be positive, got %v", cfg.TickInterval)
	}
	return &cfg, nil
}
