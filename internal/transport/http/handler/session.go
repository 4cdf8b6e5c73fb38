package handler

import (
	"net/http"

	"github.com/go-passwordless-api/internal/transport/http/middleware"
)

// SessionHandler reports the current authenticated session.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler { return &SessionHandler{} }

// Current returns the email bound to the verified session cookie. The
// middleware has already rejected anything without a valid token.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.EmailFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Email: email})
}
