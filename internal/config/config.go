// Package config loads the daemon configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Port     string `env:"PORT" envDefault:"8080"`
	GRPCPort string `env:"GRPC_PORT" envDefault:"9090"`
	MMDBPath string `env:"MMDB_PATH,required"`
	// Locales is the comma separated locale preference of the returned names.
	Locales   []string `env:"LOCALES" envSeparator:"," envDefault:"en"`
	WatchMMDB bool     `env:"WATCH_MMDB" envDefault:"true"`

	Update Update
}

// Update configures downloads of the database from MaxMind.
type Update struct {
	AccountID  int    `env:"MAXMIND_ACCOUNT_ID"`
	LicenseKey string `env:"MAXMIND_LICENSE_KEY"`
	EditionID  string `env:"MAXMIND_EDITION_ID" envDefault:"GeoLite2-City"`
	URL        string `env:"MAXMIND_UPDATE_URL" envDefault:"https://updates.maxmind.com"`
	// Interval between downloads. Zero downloads once at startup, and only when the
	// database file is missing.
	Interval time.Duration `env:"UPDATE_INTERVAL" envDefault:"0s"`
}

// Enabled reports whether credentials for downloads are configured.
func (u Update) Enabled() bool {
	return u.AccountID != 0 && u.LicenseKey != ""
}

func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	locales := cfg.Locales[:0]
	for _, l := range cfg.Locales {
		if l = strings.TrimSpace(l); l != "" {
			locales = append(locales, l)
		}
	}
	cfg.Locales = locales

	if cfg.MMDBPath == "" {
		return Config{}, fmt.Errorf("failed to load config: MMDB_PATH must not be empty")
	}
	if cfg.Update.Interval < 0 {
		return Config{}, fmt.Errorf("failed to load config: UPDATE_INTERVAL must not be negative")
	}

	return cfg, nil
}

// SlogLevel converts LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
