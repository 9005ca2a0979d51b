package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type implLogger struct {
	zl zerolog.Logger
}

type fieldsKey struct{}

// New creates a Logger writing JSON lines to stdout. Format "text" switches to
// a human readable console writer.
func New(level, format string) Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a Logger that writes to w.
func NewWithWriter(w io.Writer, level, format string) Logger {
	if strings.ToLower(format) == "text" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zl := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
	return &implLogger{zl: zl}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &implLogger{zl: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithFields returns a context whose log lines carry the given key/value pair
// in addition to any fields already attached.
func WithFields(ctx context.Context, key, value string) context.Context {
	prev := Fields(ctx)
	next := make(map[string]string, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	next[key] = value
	return context.WithValue(ctx, fieldsKey{}, next)
}

// Fields returns the correlation fields attached to ctx.
func Fields(ctx context.Context) map[string]string {
	if ctx == nil {
		return nil
	}
	if f, ok := ctx.Value(fieldsKey{}).(map[string]string); ok {
		return f
	}
	return nil
}

func (l *implLogger) emit(ctx context.Context, ev *zerolog.Event, msg string, args []interface{}) {
	if ev == nil {
		return
	}
	for k, v := range Fields(ctx) {
		ev = ev.Str(k, v)
	}
	ev.Msgf(msg, args...)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.emit(ctx, l.zl.Debug(), msg, args)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.emit(ctx, l.zl.Info(), msg, args)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.emit(ctx, l.zl.Warn(), msg, args)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.emit(ctx, l.zl.Error(), msg, args)
}
