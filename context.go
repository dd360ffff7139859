package hotspot

import "context"

type ctxKey string

const (
	ctxKeySession   ctxKey = "hotspot_session"
	ctxKeyRequestID ctxKey = "hotspot_request_id"
)

// WithSession stores a snapshot of the current session in the context.
// The coordinator remains the source of truth; the snapshot is for consumers
// that render identity without reaching back into the coordinator.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext extracts the session snapshot from the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKeySession).(Session)
	return s, ok
}

// WithRequestID stores a request correlation id in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestIDFromContext extracts the request correlation id from the context.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}
