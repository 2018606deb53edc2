package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kaan/pocketledger/pkg/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	UserID(token string) (string, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved user id on the request context for handlers downstream.
func Authenticate(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			userID, err := verifier.UserID(token)
			if err != nil {
				http.Error(w, auth.ErrNotAuthenticated.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// WithUserID stores an already-verified user id on the context. Entry points
// that authenticate out of band (lambda events, tests) use this instead of
// the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id set by Authenticate.
// The second result is false for requests that skipped the middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}
	return ""
}
