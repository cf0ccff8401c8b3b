package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	corelogger "github.com/mariondam/Wattflex/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a zerolog-backed Logger tagged with the given component.
// APP_ENV=dev selects a human-readable console writer, anything else emits
// structured JSON on stdout.
func New(component string) Logger {
	z := zerolog.New(rootWriter()).With().Timestamp().Str("component", component).Logger()
	return &componentLogger{z: z}
}

// SetLevel adjusts the global zerolog level for all loggers.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func rootWriter() io.Writer {
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

type componentLogger struct {
	z zerolog.Logger
}

func (l *componentLogger) Debugf(format string, args ...any) { l.z.Debug().Msgf(format, args...) }

func (l *componentLogger) Debugw(msg string, fields map[string]any) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l *componentLogger) Infof(format string, args ...any) { l.z.Info().Msgf(format, args...) }

func (l *componentLogger) Warnf(format string, args ...any) { l.z.Warn().Msgf(format, args...) }

func (l *componentLogger) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }
