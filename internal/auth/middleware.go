package auth

import (
	"context"
	"net/http"
)

// contextKey is unexported so no other package can read or shadow the
// caller identity stored in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// CookieName is the session cookie holding the JWT.
const CookieName = "token"

// RequireAuth enforces authentication on protected routes. It reads the JWT
// from the session cookie, validates it, and stores the user ID in the
// request context. Missing or invalid tokens end the request with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthenticated","message":"you must be logged in"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the caller identity when a valid token is present
// but never blocks the request. Public feed routes use it so anonymous
// browsing works while logged-in users still get an identity in context.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithUserID returns a context carrying the caller identity, the same
// way the auth middleware stores it.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated caller's ID, or ("", false)
// for an anonymous request. Authorization checks re-read this on every call;
// nothing is cached between requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID reads the session cookie and validates its token.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
