package testutil

import (
	"net/http"
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// WithIdentity attaches a verified caller identity to the request context,
// simulating what the auth middleware does for authenticated requests.
func WithIdentity(req *http.Request, ident domain.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), ident))
}

// WithRequestTime pins the request-scoped reference instant, so age
// classification in the handler under test is deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
