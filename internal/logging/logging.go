// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package logging builds zerolog loggers for the bufferpool components.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level   string    // debug, info, warn, error
	Format  string    // "json" or "text"
	Output  io.Writer // defaults to os.Stderr
	NoColor bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: os.Stderr,
	}
}

var (
	defaultLogger *zerolog.Logger
	mu            sync.RWMutex
)

// ParseLevel converts a level name into a zerolog level.
// An empty name means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}

// NewLogger creates a new structured logger.
func NewLogger(cfg Config) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	var zlog zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case "json":
		zlog = zerolog.New(output)
	case "", "text", "console":
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: output, NoColor: cfg.NoColor})
	default:
		return zerolog.Nop(), errors.Errorf("invalid log format %q", cfg.Format)
	}
	return zlog.Level(level).With().Timestamp().Logger(), nil
}

// Default returns the process-wide logger, creating it if necessary.
func Default() zerolog.Logger {
	mu.RLock()
	if defaultLogger != nil {
		defer mu.RUnlock()
		return *defaultLogger
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		logger, _ := NewLogger(DefaultConfig())
		defaultLogger = &logger
	}
	return *defaultLogger
}

// SetDefault sets the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = &logger
}

// Nop returns a logger, which discards everything. Useful for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
