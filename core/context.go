package core

import "context"

// Context keys for report options
type contextKey string

const (
	suppressLogsKey contextKey = "suppressLogs"
)

// WithSuppressLogs marks the context so progress and warning lines are not printed.
// The MCP server uses it to keep stdio clean for the protocol.
func WithSuppressLogs(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressLogsKey, true)
}

// shouldSuppressLogs returns whether log lines should be suppressed from context
func shouldSuppressLogs(ctx context.Context) bool {
	val := ctx.Value(suppressLogsKey)
	if val == nil {
		return false // default: show logs
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// logWarn prints a warning unless the context suppresses logs.
func logWarn(ctx context.Context, msg string, err error) {
	if shouldSuppressLogs(ctx) {
		return
	}
	warnFunc(msg, err)
}

// logInfo prints a progress line unless the context suppresses logs.
func logInfo(ctx context.Context, format string, args ...any) {
	if shouldSuppressLogs(ctx) {
		return
	}
	infoFunc(format, args...)
}
