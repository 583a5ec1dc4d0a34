package pmboard

import (
	"context"
	"log/slog"
)

// Logger wraps slog.Logger with request context.
type Logger struct {
	logger    *slog.Logger
	requestID string
	attrs     []slog.Attr
}

// With returns a logger that appends attrs to every record.
func (l Logger) With(attrs ...slog.Attr) Logger {
	l.attrs = append(append([]slog.Attr{}, l.attrs...), attrs...)
	return l
}

// Info logs an info message.
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelInfo, msg, attrs)
}

// Warn logs a warning message.
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelWarn, msg, attrs)
}

// Error logs an error message.
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelError, msg, attrs)
}

// Debug logs a debug message.
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(slog.LevelDebug, msg, attrs)
}

func (l Logger) log(level slog.Level, msg string, attrs []slog.Attr) {
	if l.logger == nil {
		return
	}
	out := make([]slog.Attr, 0, len(l.attrs)+len(attrs)+1)
	out = append(out, l.attrs...)
	out = append(out, attrs...)
	if l.requestID != "" {
		out = append(out, slog.String("request_id", l.requestID))
	}
	l.logger.LogAttrs(context.Background(), level, msg, out...)
}
