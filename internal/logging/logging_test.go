package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	logger, closeFn, err := New(Config{Level: "info", Console: &console, Dir: dir})
	require.NoError(t, err)

	logger.Info("file processed", zap.String("file", "a.xlsx"), zap.Int("planned", 3))
	logger.Debug("hidden")
	require.NoError(t, closeFn())

	out := console.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "file processed")
	assert.Contains(t, out, `"file": "a.xlsx"`)
	assert.NotContains(t, out, "hidden")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "file processed", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "a.xlsx", entry["file"])
	assert.EqualValues(t, 3, entry["planned"])
}

func TestNewAppendsToExistingLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("{\"msg\":\"earlier\"}\n"), 0o644))

	logger, closeFn, err := New(Config{Console: &bytes.Buffer{}, Dir: dir})
	require.NoError(t, err)
	logger.Warn("later")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var console bytes.Buffer
	logger, closeFn, err := New(Config{Level: "loud", Console: &console})
	require.NoError(t, err)
	logger.Debug("debug line")
	logger.Info("info line")
	require.NoError(t, closeFn())

	assert.NotContains(t, console.String(), "debug line")
	assert.Contains(t, console.String(), "info line")
}

func TestNewDebugLevel(t *testing.T) {
	var console bytes.Buffer
	logger, closeFn, err := New(Config{Level: "debug", Console: &console})
	require.NoError(t, err)
	logger.Debug("debug line")
	require.NoError(t, closeFn())
	assert.Contains(t, console.String(), "debug line")
}

func TestNewFailsOnMissingDir(t *testing.T) {
	_, _, err := New(Config{Console: &bytes.Buffer{}, Dir: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}
