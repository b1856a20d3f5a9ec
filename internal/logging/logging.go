// Package logging builds the zap logger shared by all commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// FileName is the run log written next to the source workbooks.
const FileName = "master_data.log"

// Config selects the logger outputs.
type Config struct {
	// Level is a zap level name; unknown values fall back to info.
	Level string
	// Console receives human-readable output. Defaults to stderr.
	Console io.Writer
	// Color forces colored level names on the console.
	Color bool
	// Dir, when set, also appends JSON lines to Dir/master_data.log.
	Dir string
}

// New creates a logger that writes to the console and, optionally, to the
// log file. The returned close function flushes the logger and releases
// the file.
func New(cfg Config) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	enabled := zap.NewAtomicLevelAt(level)

	console := cfg.Console
	color := cfg.Color
	if console == nil {
		console = os.Stderr
		color = color || term.IsTerminal(int(os.Stderr.Fd()))
	}
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(zapcore.AddSync(console)), enabled),
	}

	var file *os.File
	if cfg.Dir != "" {
		path := filepath.Join(cfg.Dir, FileName)
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.Lock(file), enabled))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() error {
		// Sync on a terminal returns EINVAL; ignore it.
		_ = logger.Sync()
		if file == nil {
			return nil
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		return nil
	}
	return logger, closeFn, nil
}
