package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const emailKey contextKey = "session_email"

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// TokenVerifier validates a session token and returns the embedded email.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Session returns middleware that validates the session cookie and injects
// the authenticated email into the request context. A missing, malformed,
// tampered or expired token is always the same 401; the reason is never
// surfaced.
func Session(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			email, err := verifier.Verify(cookie.Value)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext extracts the authenticated email from the request context.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}
