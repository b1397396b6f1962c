// Package log provides structured logging for the Host Agent and Signer
// processes. It wraps log/slog with per-component child loggers, the same
// shape the rest of the retrieved pack uses for its own slog wrapper.
package log

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with signer/host-agent context.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler, for
// tests or alternate destinations.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger { return defaultLogger }

// Component returns a child logger tagged with the given subsystem name
// ("hostagent", "signer", "noncestore", ...).
func (l *Logger) Component(name string) *Logger {
	return &Logger{inner: l.inner.With("component", name)}
}

// Session returns a child logger tagged with a session's tx counter, so
// every log line for one transaction can be correlated.
func (l *Logger) Session(tsxCtr uint64) *Logger {
	return &Logger{inner: l.inner.With("tsx_ctr", tsxCtr)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger { return &Logger{inner: l.inner.With(args...)} }

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// Component returns a child of the default logger tagged with name.
func Component(name string) *Logger { return defaultLogger.Component(name) }
