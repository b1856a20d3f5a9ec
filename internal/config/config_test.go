package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Run.Dir)
	assert.Nil(t, cfg.History.Enabled)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[run]
dir = "/data/saha"
output = "RAPOR.xlsx"
skip-backups = false

[watch]
debounce = "2s"
rescan = "@every 10s"

[log]
level = "debug"
file = false

[history]
enabled = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Run.Dir)
	assert.Equal(t, "/data/saha", *cfg.Run.Dir)
	assert.Equal(t, "RAPOR.xlsx", *cfg.Run.Output)
	assert.False(t, *cfg.Run.SkipBackups)
	assert.Equal(t, "@every 10s", *cfg.Watch.Rescan)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.False(t, *cfg.Log.File)
	assert.False(t, *cfg.History.Enabled)

	d, err := cfg.Watch.DebounceDuration(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[run]\ndirectory = \"x\"\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run.directory")
}

func TestLoadConfigDecodeError(t *testing.T) {
	path := writeConfig(t, "[run\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestDebounceDuration(t *testing.T) {
	d, err := WatchConfig{}.DebounceDuration(3 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	bad := "soon"
	_, err = WatchConfig{Debounce: &bad}.DebounceDuration(time.Second)
	require.Error(t, err)

	neg := "-1s"
	_, err = WatchConfig{Debounce: &neg}.DebounceDuration(time.Second)
	require.Error(t, err)
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, filepath.Join("/cfg", "masterdata", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "masterdata", "history.db"), DefaultDBPath())
}
