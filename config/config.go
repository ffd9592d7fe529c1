// Package config provides configuration management for the dashboard. It
// loads defaults, then an optional YAML file, then .env and environment
// variables, later sources overriding earlier ones.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// ListenAddr is the address of the HTTP UI boundary.
	ListenAddr string `yaml:"listen_addr"`
	// Store selects the backing store: "memory" or "sqlite".
	Store string `yaml:"store"`
	// DBPath is the SQLite file of the persisted store.
	DBPath string `yaml:"db_path"`
	// Model is the Gemini model used for price lookup and advice.
	Model string `yaml:"model"`
	// IntradayURL is the direct quote endpoint, symbol appended.
	IntradayURL string `yaml:"intraday_url"`
	// IntradayPath is the jsonpath of the price in its response.
	IntradayPath string `yaml:"intraday_path"`
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:   ":8990",
		Store:        "sqlite",
		DBPath:       "finboard.db",
		Model:        "",
		IntradayPath: "$.last",
		LogLevel:     "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists), an optional .env file, and environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// no file, defaults apply
		case err != nil:
			return cfg, fmt.Errorf("could not read config file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return cfg, fmt.Errorf("could not parse config file %q: %w", path, err)
			}
		}
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	overrideEnv(&cfg.ListenAddr, "FINBOARD_LISTEN_ADDR")
	overrideEnv(&cfg.Store, "FINBOARD_STORE")
	overrideEnv(&cfg.DBPath, "FINBOARD_DB_PATH")
	overrideEnv(&cfg.Model, "FINBOARD_MODEL")
	overrideEnv(&cfg.IntradayURL, "FINBOARD_INTRADAY_URL")
	overrideEnv(&cfg.IntradayPath, "FINBOARD_INTRADAY_PATH")
	overrideEnv(&cfg.LogLevel, "FINBOARD_LOG_LEVEL")

	if cfg.Store != "memory" && cfg.Store != "sqlite" {
		return cfg, fmt.Errorf("unknown store %q: must be \"memory\" or \"sqlite\"", cfg.Store)
	}
	return cfg, nil
}

func overrideEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}
