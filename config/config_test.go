package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0, cfg.Schedule.TimezoneOffset)
	assert.True(t, cfg.Schedule.AllowFuture)
	assert.Equal(t, "shifts.db", cfg.Storage.DBPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[schedule]
timezone_offset = 5
allow_future = false

[storage]
db_path = ":memory:"
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Schedule.TimezoneOffset)
	assert.False(t, cfg.Schedule.AllowFuture)
	assert.Equal(t, ":memory:", cfg.Storage.DBPath)
}

func TestLoad_BadTOMLRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[server`), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090
`), 0o644))

	t.Setenv("SHIFT_ENGINE_PORT", "7070")
	t.Setenv("SHIFT_ENGINE_DB_PATH", "override.db")
	t.Setenv("SHIFT_ENGINE_TZ_OFFSET", "-3")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "override.db", cfg.Storage.DBPath)
	assert.Equal(t, -3, cfg.Schedule.TimezoneOffset)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"port too low":        func(c *config.Config) { c.Server.Port = 0 },
		"port too high":       func(c *config.Config) { c.Server.Port = 70000 },
		"offset too far west": func(c *config.Config) { c.Schedule.TimezoneOffset = -13 },
		"offset too far east": func(c *config.Config) { c.Schedule.TimezoneOffset = 15 },
		"empty db path":       func(c *config.Config) { c.Storage.DBPath = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
