// Package logger provides levelled, structured logging for animerec.
//
// Messages go to stderr through zerolog. Warnings and errors are always
// written; debug and info messages only appear once verbose mode is enabled
// with the --verbose flag. SetJSON switches from the human console format
// to one JSON object per line.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	jsonOut bool
	output  io.Writer = os.Stderr
	base              = build(os.Stderr, false, false)
)

// build creates the zerolog logger for the current settings.
func build(w io.Writer, isVerbose, isJSON bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if isVerbose {
		level = zerolog.DebugLevel
	}

	if !isJSON {
		w = zerolog.ConsoleWriter{
			Out:          w,
			NoColor:      true,
			PartsExclude: []string{zerolog.TimestampFieldName},
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// rebuild must be called with mu held for writing.
func rebuild() {
	base = build(output, verbose, jsonOut)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	rebuild()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetJSON switches between console output and JSON lines.
func SetJSON(v bool) {
	mu.Lock()
	defer mu.Unlock()
	jsonOut = v
	rebuild()
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// L returns the current logger for structured events:
//
//	logger.L().Warn().Int("rows_dropped", n).Msg("dropped rows with null fields")
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// Debug logs a formatted message at debug level.
func Debug(format string, args ...any) {
	L().Debug().Msgf(format, args...)
}

// Section logs a section header at debug level.
func Section(name string) {
	L().Debug().Str("section", name).Msgf("=== %s ===", name)
}

// Info logs a formatted message at info level.
func Info(format string, args ...any) {
	L().Info().Msgf(format, args...)
}

// Warn logs a formatted message at warn level.
func Warn(format string, args ...any) {
	L().Warn().Msgf(format, args...)
}

// Error logs a formatted message at error level.
func Error(format string, args ...any) {
	L().Error().Msgf(format, args...)
}
