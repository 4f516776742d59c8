package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dori/checkmark/internal/model"
)

// Backend names a storage adapter
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendJSON   Backend = "json"
)

// Config holds application configuration
type Config struct {
	DataDir  string
	Backend  Backend
	LogLevel string

	// Theme is "dark", "light" or "" to use the persisted flag
	Theme  string
	Filter model.Filter
	Sort   model.SortKey

	Notify bool
}

// DefaultDataDir returns $XDG_DATA_HOME/checkmark, falling back to
// ~/.local/share/checkmark
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "checkmark")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".checkmark"
	}
	return filepath.Join(home, ".local", "share", "checkmark")
}

// Default returns the default application configuration
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		Backend:  BackendSQLite,
		LogLevel: "info",
		Filter:   model.FilterAll,
		Sort:     model.SortDate,
		Notify:   true,
	}
}

// FromEnv returns Default with CHECKMARK_* environment overrides applied
func FromEnv() *Config {
	cfg := Default()

	if val := os.Getenv("CHECKMARK_DATA_DIR"); val != "" {
		cfg.DataDir = val
	}
	if val := os.Getenv("CHECKMARK_BACKEND"); val != "" {
		cfg.Backend = Backend(strings.ToLower(val))
	}
	if val := os.Getenv("CHECKMARK_LOG_LEVEL"); val != "" {
		cfg.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("CHECKMARK_THEME"); val != "" {
		cfg.Theme = strings.ToLower(val)
	}
	if val := os.Getenv("CHECKMARK_NOTIFY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Notify = b
		}
	}

	return cfg
}

// DBPath returns the SQLite database path
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "checkmark.db")
}

// JSONPath returns the JSON backend file path
func (c *Config) JSONPath() string {
	return filepath.Join(c.DataDir, "todos.json")
}

// LockPath returns the single-instance lock file path
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "checkmark.lock")
}

// LogPath returns the log file path
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, "checkmark.log")
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is empty")
	}
	switch c.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite or json)", c.Backend)
	}
	switch c.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q (want dark or light)", c.Theme)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if !c.Filter.Valid() {
		return fmt.Errorf("unknown filter %q", c.Filter)
	}
	if !c.Sort.Valid() {
		return fmt.Errorf("unknown sort %q", c.Sort)
	}
	return nil
}
