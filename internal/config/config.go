package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the client reads from the environment.
type Config struct {
	Env string `env:"ENV" envDefault:"production"`

	// Home is where session.json and the log file live. Defaults to ~/.tada.
	Home  string `env:"HOME_DIR"`
	Theme string `env:"THEME" envDefault:"classic"`

	// Token overrides the stored access token (TADA_TOKEN).
	Token string `env:"TOKEN"`

	API APIConfig `envPrefix:"API_"`
	Log LogConfig `envPrefix:"LOG_"`
}

// APIConfig points the client at the remote to-do API.
type APIConfig struct {
	URL      string        `env:"URL" envDefault:"http://localhost:8080"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"30s"`
	PageSize int           `env:"PAGE_SIZE" envDefault:"10"`
}

// LogConfig controls where zap writes. The TUI owns stdout, so logs go to a file.
type LogConfig struct {
	File string `env:"FILE"`
}

const envPrefix = "TADA_"

// Load reads an optional .env file, then TADA_* variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		cfg.Home = filepath.Join(home, ".tada")
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Home, "tada.log")
	}
	if cfg.API.PageSize <= 0 {
		cfg.API.PageSize = 10
	}
	return cfg, nil
}

// SessionPath is the durable key-value file holding tokens and the user.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Home, "session.json")
}
