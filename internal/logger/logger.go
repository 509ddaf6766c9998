// Package logger provides verbose logging for docsight.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the document pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	zlog              = build(os.Stderr, false)
)

// build creates the console logger. Timestamps are left out so the
// output reads like plain CLI diagnostics.
func build(w io.Writer, enabled bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i any) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
	}

	level := zerolog.Disabled
	if enabled {
		level = zerolog.DebugLevel
	}
	return zerolog.New(cw).Level(level)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	zlog = build(output, verbose)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	zlog = build(output, verbose)
}

// Logger returns the underlying zerolog logger for structured fields.
// It is disabled unless verbose mode is on.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return zlog
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	l := Logger()
	l.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	l := Logger()
	l.Info().Msgf(format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	l := Logger()
	l.Warn().Msgf(format, args...)
}

// Timed logs how long an operation took, with its error if any.
func Timed(op string, start time.Time, err error) {
	l := Logger()
	evt := l.Debug()
	if err != nil {
		evt = l.Warn().Err(err)
	}
	evt.Str("op", op).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("done")
}
