package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int      `env:"PORT" envDefault:"8080"`
	DatabasePath   string   `env:"DATABASE_PATH" envDefault:"./mint.db"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	JWTSecret      string   `env:"JWT_SECRET"` // Empty disables ingest auth
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:1420,http://localhost:3000" envSeparator:","`

	IngestQueueSize   int    `env:"INGEST_QUEUE_SIZE" envDefault:"256"`
	SimulatorEnabled  bool   `env:"SIMULATOR_ENABLED" envDefault:"false"`
	SimulatorSchedule string `env:"SIMULATOR_SCHEDULE" envDefault:"@every 1s"`
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.ServerPort)
	}
	if cfg.IngestQueueSize <= 0 {
		return nil, fmt.Errorf("INGEST_QUEUE_SIZE must be positive, got %d", cfg.IngestQueueSize)
	}
	return cfg, nil
}
