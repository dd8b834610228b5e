// Package debug provides development logging for the atelier CLI.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	enabled bool
	writer  io.WriteCloser
	logger  = zerolog.Nop()
	mu      sync.RWMutex
	logPath string
)

// Enable turns on debug logging to the specified file. The file is rotated
// once it grows past a few megabytes.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger = zerolog.New(writer).With().Timestamp().Logger()
	logPath = path
	enabled = true

	logger.Info().Str("log_file", path).Msg("debug session started")
	return nil
}

// Disable turns off debug logging and closes the file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}

	if writer != nil {
		_ = writer.Close() //nolint:errcheck // Nothing useful to do on close failure
		writer = nil
	}
	logger = zerolog.Nop()
	enabled = false
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// L returns the structured logger. It discards everything while debug
// logging is disabled.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// Log writes a debug message if logging is enabled.
func Log(format string, args ...any) {
	L().Debug().Msgf(format, args...)
}

// LogPath returns the path to the log file.
func LogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

// Event logs an event with component context.
func Event(component, eventType, details string) {
	L().Debug().Str("component", component).Str("event", eventType).Msg(details)
}

// Error logs an error with context.
func Error(component string, err error, context string) {
	L().Error().Str("component", component).Err(err).Msg(context)
}
