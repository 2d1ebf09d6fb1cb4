package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation ID to every request. An inbound
// X-Request-ID header is honored so upstream proxies can trace calls
// end to end; otherwise a fresh UUID is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
