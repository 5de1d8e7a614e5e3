package persistence

import "context"

type requestIDKey struct{}

// RequestIDFromContext returns the request id attached by the API
// middleware, or "" when none is present. The GORM log adapter uses it
// to correlate SQL lines with HTTP requests.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID attaches a request id for downstream logging.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
