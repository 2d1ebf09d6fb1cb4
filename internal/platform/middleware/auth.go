package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims is what the auth middleware needs from a validated token.
// The identity it carries is a claim about the caller; scoped operations
// still re-check role and center state against the store.
type TokenClaims struct {
	UserID   string
	Role     string
	CenterID string
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the verified identity to the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			after, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(after)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ident, err := identityFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, ident)))
		})
	}
}

func identityFromClaims(claims *TokenClaims) (domain.Identity, error) {
	userID, err := domain.ParseUserID(claims.UserID)
	if err != nil {
		return domain.Identity{}, err
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	ident := domain.Identity{UserID: userID, Role: role}
	if claims.CenterID != "" {
		centerID, err := domain.ParseCenterID(claims.CenterID)
		if err != nil {
			return domain.Identity{}, err
		}
		ident.CenterID = &centerID
	}
	return ident, nil
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
