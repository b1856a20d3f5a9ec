// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Run     RunConfig     `toml:"run"`
	Watch   WatchConfig   `toml:"watch"`
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
}

// RunConfig maps settings of a single aggregation run.
type RunConfig struct {
	Dir         *string `toml:"dir"`
	Output      *string `toml:"output"`
	SkipBackups *bool   `toml:"skip-backups"`
}

// WatchConfig maps watch mode settings.
type WatchConfig struct {
	Debounce *string `toml:"debounce"`
	Rescan   *string `toml:"rescan"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *bool   `toml:"file"`
}

// HistoryConfig maps run history settings.
type HistoryConfig struct {
	Enabled *bool `toml:"enabled"`
}

// DebounceDuration parses watch.debounce. It returns fallback when unset.
func (w WatchConfig) DebounceDuration(fallback time.Duration) (time.Duration, error) {
	if w.Debounce == nil {
		return fallback, nil
	}
	d, err := time.ParseDuration(*w.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid watch.debounce %q: %w", *w.Debounce, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid watch.debounce %q: must not be negative", *w.Debounce)
	}
	return d, nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
