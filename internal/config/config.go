package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from TABLEBOOK_* environment variables.
type Config struct {
	// Backend
	BaseURL        string        `envconfig:"BASE_URL" default:"http://localhost:3000"`
	RequestTimeout time.Duration `envconfig:"TIMEOUT" default:"30s"`

	// Session
	SessionFile     string        `envconfig:"SESSION_FILE"`
	SessionLifetime time.Duration `envconfig:"SESSION_LIFETIME" default:"24h"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("tablebook", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.SessionFile = filepath.Join(home, ".tablebook", "session.toml")
	}

	return &cfg, nil
}
