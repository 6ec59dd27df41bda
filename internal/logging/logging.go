// Package logging builds the application logger.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrInvalidLogLevel reports a level name zap does not know.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Options configure the logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File appends a second sink next to stderr when set. Its directory is
	// created if missing.
	File string
}

// New creates a console logger for interactive runs: ISO8601 timestamps,
// capitalized levels, colored unless a log file is in play.
func New(opts Options) (*zap.Logger, error) {
	if opts.Level == "" {
		opts.Level = "info"
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, opts.Level)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.OutputPaths = []string{"stderr"}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		// Color codes do not belong in files.
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// DefaultLogFile names a timestamped log file inside dir.
func DefaultLogFile(dir string) string {
	return filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
}
