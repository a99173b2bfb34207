// Package cliconfig loads CoCa's configuration from defaults, a TOML file,
// environment variables, and command-line flags, in that order of
// precedence (later sources win; explicitly set flags always win).
package cliconfig

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Store backends for the compound registry.
const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
)

// Config holds CLI configuration for coca.
type Config struct {
	// ListenAddr is the address the web UI binds to.
	ListenAddr string

	// DataDir holds the compound database. Defaults to ~/.coca.
	DataDir string

	// DBPath is the SQLite database file. Derived from DataDir during
	// Validate unless set explicitly.
	DBPath string

	// Store selects the registry backend: "sqlite" or "json".
	Store string

	LogLevel  string
	LogFormat string

	// HTTPTimeout bounds reading of request headers.
	HTTPTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown of the web server.
	ShutdownTimeout time.Duration

	// WatchConfig enables live reload of dynamic settings from the
	// config file.
	WatchConfig bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8117",
		Store:           StoreSQLite,
		LogLevel:        "info",
		LogFormat:       "console",
		HTTPTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		WatchConfig:     true,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
		if c.DataDir == "" {
			return fmt.Errorf("data-dir is required (no home directory)")
		}
	}

	switch c.Store {
	case StoreSQLite, StoreJSON:
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store, StoreSQLite, StoreJSON)
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "compounds.db")
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("parse log-level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", c.LogFormat)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
