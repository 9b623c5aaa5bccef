package logging

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota
	capabilityKey
	latencyKey
)

// WithRequestID attaches a request identifier to the context so every log line
// emitted during that request carries it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID extracts the request identifier from the context, if present.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// WithCapability attaches the active capability to the context.
func WithCapability(ctx context.Context, capability string) context.Context {
	return context.WithValue(ctx, capabilityKey, capability)
}

// GetCapability extracts the active capability from the context, if present.
func GetCapability(ctx context.Context) (string, bool) {
	capability, ok := ctx.Value(capabilityKey).(string)
	return capability, ok
}

// WithLatency attaches an operation duration in milliseconds, typically set
// once a request finishes so its completion log line carries the timing.
func WithLatency(ctx context.Context, ms int64) context.Context {
	return context.WithValue(ctx, latencyKey, ms)
}

// GetLatency extracts the operation duration from the context, if present.
func GetLatency(ctx context.Context) (int64, bool) {
	ms, ok := ctx.Value(latencyKey).(int64)
	return ms, ok
}
