package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HTTPStarted logs an incoming request at debug level.
func (l *Logger) HTTPStarted(ctx context.Context, r *http.Request, clientIP string) {
	l.DebugContext(ctx, "HTTP request started", NewFields().
		With(FieldMethod, r.Method).
		With(FieldPath, r.URL.Path).
		With(FieldQuery, r.URL.RawQuery).
		With(FieldUserAgent, r.UserAgent()).
		With(FieldClientIP, clientIP)...)
}

// HTTPCompleted logs a finished request; 4xx at warn, 5xx at error.
func (l *Logger) HTTPCompleted(ctx context.Context, r *http.Request, status int, elapsed time.Duration, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	l.Log(ctx, level, "HTTP request completed", NewFields().
		With(FieldMethod, r.Method).
		With(FieldPath, r.URL.Path).
		With(FieldStatusCode, status).
		With(FieldDuration, elapsed.Milliseconds()).
		With(FieldClientIP, clientIP)...)
}

// ActivityChanged logs a user edit to a day's activities.
func (l *Logger) ActivityChanged(ctx context.Context, op, dateKey, id, name string) {
	l.InfoContext(ctx, "Activity overlay changed", NewFields().
		With(FieldOperation, op).
		WithActivity(dateKey, id, name)...)
}

// OperationFailed logs err with the operation that produced it.
func (l *Logger) OperationFailed(ctx context.Context, msg, op string, err error) {
	l.ErrorContext(ctx, msg, NewFields().With(FieldOperation, op).WithError(err)...)
}
