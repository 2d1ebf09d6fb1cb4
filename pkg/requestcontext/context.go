// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services consume them. Keeping the package
// free of net/http lets decision code import only what it needs.
//
// Usage in services (read values):
//
//	identity, ok := requestcontext.Identity(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithIdentity(ctx, identity)
//	ctx = requestcontext.WithTime(ctx, receivedAt)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedDate)
package requestcontext

import (
	"context"
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
)

type (
	identityKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyIdentity    = identityKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Identity retrieves the verified caller identity from the context.
// The second return is false when no authenticated identity was attached.
func Identity(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(ContextKeyIdentity).(domain.Identity)
	return ident, ok
}

// WithIdentity injects a verified caller identity into the context.
func WithIdentity(ctx context.Context, ident domain.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped reference instant from context.
//
// Every age computation takes its reference instant from here so that a
// child's classification is identical across all checks within one request,
// and deterministic under test. Falls back to time.Now() for non-HTTP
// contexts (workers, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific reference instant into a context.
// Useful for service unit tests that don't run the middleware chain, and for
// batch jobs that need one consistent instant across an entire run.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
