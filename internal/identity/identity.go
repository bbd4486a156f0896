// Package identity resolves callers to a stable user ID before any core
// logic runs. The core trusts this identity completely and scopes every
// store query by it.
package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomasoliva/brio-agent/internal/domain"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the authenticated user ID from the request
// context. Empty means the middleware did not run.
func UserIDFromContext(ctx context.Context) domain.UserID {
	if v, ok := ctx.Value(userIDKey).(domain.UserID); ok {
		return v
	}
	return ""
}

// WithUserID injects a user ID, mainly for tests.
func WithUserID(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Middleware authenticates requests with a static bearer-token map
// (token -> user ID). Unauthenticated callers are rejected before any
// handler runs.
func Middleware(tokens map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}
			userID, ok := tokens[token]
			if !ok {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), domain.UserID(userID))))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
