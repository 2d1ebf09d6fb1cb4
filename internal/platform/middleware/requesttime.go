package middleware

import (
	"net/http"
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context. Every age computation within one request reads
// this single instant, so a child cannot land in two different bands during
// the same call.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
