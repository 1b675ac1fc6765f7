// Package logger provides the structured, leveled logger used by the pnp CLI.
// It wraps log/slog and satisfies both the odata.Logger and transport.Logger
// method sets, so one instance serves the library and the command layer.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger defines structured logging with Debug, Info, Warn and Error levels,
// each in a key/value and a printf-style variant.
type Logger interface {
	Debug(msg string, args ...any)
	Debugf(format string, args ...any)

	Info(msg string, args ...any)
	Infof(format string, args ...any)

	Warn(msg string, args ...any)
	Warnf(format string, args ...any)

	Error(msg string, args ...any)
	Errorf(format string, args ...any)
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (l NoopLogger) Debug(msg string, args ...any)     {}
func (l NoopLogger) Debugf(format string, args ...any) {}
func (l NoopLogger) Info(msg string, args ...any)      {}
func (l NoopLogger) Infof(format string, args ...any)  {}
func (l NoopLogger) Warn(msg string, args ...any)      {}
func (l NoopLogger) Warnf(format string, args ...any)  {}
func (l NoopLogger) Error(msg string, args ...any)     {}
func (l NoopLogger) Errorf(format string, args ...any) {}

// SlogLogger implements Logger over a *slog.Logger.
type SlogLogger struct {
	logger *slog.Logger
}

// Options configure New.
type Options struct {
	Level  slog.Level
	Format string
	Writer io.Writer
}

// New builds a SlogLogger. Format is "text" (default) or "json"; Writer
// defaults to stderr so that command output on stdout stays clean.
func New(opts Options) *SlogLogger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

// NewSlogLogger returns a text logger on stderr at level.
func NewSlogLogger(level slog.Level) *SlogLogger {
	return New(Options{Level: level})
}

// NewDefaultLogger logs at Debug when debug is set and at Warn otherwise.
func NewDefaultLogger(debug bool, format string) Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return New(Options{Level: level, Format: format})
}

// Slog exposes the underlying logger.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.logger.Debug(sprintf(format, args...))
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.logger.Info(sprintf(format, args...))
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *SlogLogger) Warnf(format string, args ...any) {
	l.logger.Warn(sprintf(format, args...))
}

func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

func (l *SlogLogger) Errorf(format string, args ...any) {
	l.logger.Error(sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
