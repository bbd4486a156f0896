// Package observability holds the process-wide structured logger and the
// request-id plumbing that ties log lines to HTTP requests.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type ctxKey int

const requestIDKey ctxKey = iota

var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("BRIO_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	return logger
}

// WithRequestID stores the request identifier in the context so handlers
// and the app layer log under the same request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// LoggerFromContext returns the logger annotated with the context's
// request_id, or the bare logger when none was set.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		return logger.With("request_id", reqID)
	}
	return logger
}
