package config

import (
	"path/filepath"
	"testing"

	"github.com/dori/checkmark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.True(t, cfg.Notify)
}

func TestFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHECKMARK_DATA_DIR", dir)
	t.Setenv("CHECKMARK_BACKEND", "JSON")
	t.Setenv("CHECKMARK_LOG_LEVEL", "Debug")
	t.Setenv("CHECKMARK_THEME", "dark")
	t.Setenv("CHECKMARK_NOTIFY", "false")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "dark", cfg.Theme)
	assert.False(t, cfg.Notify)
	assert.Equal(t, filepath.Join(dir, "todos.json"), cfg.JSONPath())
	assert.Equal(t, filepath.Join(dir, "checkmark.db"), cfg.DBPath())
}

func TestFromEnvIgnoresBadBool(t *testing.T) {
	t.Setenv("CHECKMARK_NOTIFY", "sometimes")
	assert.True(t, FromEnv().Notify)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"backend", func(c *Config) { c.Backend = "redis" }},
		{"theme", func(c *Config) { c.Theme = "solarized" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"filter", func(c *Config) { c.Filter = model.Filter("archived") }},
		{"sort", func(c *Config) { c.Sort = model.SortKey("random") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "checkmark"), DefaultDataDir())
	assert.Equal(t, filepath.Join("/tmp/xdg", "checkmark", "checkmark.db"), Default().DBPath())
}
