// Package config loads statectl settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names accepted in STATESTORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds the CLI configuration.
type Config struct {
	Backend  string        `env:"STATESTORE_BACKEND" envDefault:"sqlite"`
	Path     string        `env:"STATESTORE_PATH" envDefault:"statestore.db"`
	LogLevel string        `env:"STATESTORE_LOG_LEVEL" envDefault:"info"`
	Timeout  time.Duration `env:"STATESTORE_TIMEOUT" envDefault:"5s"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `env:"STATESTORE_OTEL_ENDPOINT"`
}

// Load reads dotenv files into the process environment and parses Config.
// With no files it loads ".env" when present. Variables already set in the
// environment win over dotenv values.
func Load(files ...string) (Config, error) {
	if err := loadDotenv(files); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotenv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: load %s: %w", strings.Join(files, ","), err)
	}
	return nil
}

// Validate checks the parsed values.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("config: STATESTORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendFile, c.Backend)
	}
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("config: STATESTORE_PATH must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: STATESTORE_TIMEOUT must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: STATESTORE_LOG_LEVEL: %w", err)
	}
	return level, nil
}
