package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// TraceIDContextKey is the context key WithTraceID stores under.
const TraceIDContextKey contextKey = "trace_id"

// GenerateTraceID returns a random UUID v4.
func GenerateTraceID() string {
	return uuid.New().String()
}

// WithTraceID returns ctx carrying traceID. Records logged with the result
// include it as trace_id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDContextKey, traceID)
}

// GetTraceID returns the id stored by WithTraceID, falling back to the id of
// an active OpenTelemetry span. It returns "" when there is neither.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if traceID, ok := ctx.Value(TraceIDContextKey).(string); ok && traceID != "" {
		return traceID
	}
	return TraceIDFromContext(ctx)
}

// EnsureTraceID returns ctx unchanged when it already has a trace id and a
// child carrying a fresh one otherwise. Background work such as consumed
// bus messages uses it so each unit of work logs under its own id.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}
