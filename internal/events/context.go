package events

import (
	"context"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
	actionKey
)

// FromContext extracts logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return defaultLogger
}

// WithLogger adds logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRequestID adds request ID to context.
func WithRequestID(ctx context.Context, id string) context.Context {
	logger := FromContext(ctx).WithField("request_id", id)
	ctx = context.WithValue(ctx, requestIDKey, id)
	return WithLogger(ctx, logger)
}

// WithAction tags the context with the workflow action being run.
func WithAction(ctx context.Context, action string) context.Context {
	logger := FromContext(ctx).WithField("action", action)
	ctx = context.WithValue(ctx, actionKey, action)
	return WithLogger(ctx, logger)
}

// GetRequestID retrieves request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetAction retrieves the workflow action from context.
func GetAction(ctx context.Context) string {
	if a, ok := ctx.Value(actionKey).(string); ok {
		return a
	}
	return ""
}

var defaultLogger = Discard()

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
