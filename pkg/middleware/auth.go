package middleware

import (
	"context"
	"net/http"

	"github.com/classcal/server/internal/auth"
	"github.com/classcal/server/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// Auth verifies the bearer token on every request and rejects revoked
// tokens. The authenticated user ID is placed on the request context.
func Auth(tokens *auth.JWTManager, revocations auth.RevocationStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			if revocations != nil && revocations.IsRevoked(token) {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user ID from the request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
