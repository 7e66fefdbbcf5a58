package utils

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger provides leveled printf-style logging throughout the application,
// backed by zerolog. The LOG_LEVEL environment variable (debug, info, warn,
// error) selects the minimum level; default is info.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a Logger writing human-readable output to stdout.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a Logger writing to the given writer. Used by tests
// to capture or discard output.
func NewLoggerTo(w io.Writer) *Logger {
	level := zerolog.InfoLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(env)); err == nil {
			level = parsed
		}
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	return &Logger{
		zl: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

func (l *Logger) Info(format string, args ...any)  { l.zl.Info().Msgf(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.zl.Warn().Msgf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.zl.Error().Msgf(format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.zl.Debug().Msgf(format, args...) }
