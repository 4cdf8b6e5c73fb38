package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-passwordless-api/internal/application/logincode"
	"github.com/go-passwordless-api/internal/domain"
	"github.com/go-passwordless-api/internal/pkg/validate"
	"github.com/go-passwordless-api/internal/transport/http/middleware"
)

type requestCodeBody struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyBody struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// AuthHandler handles the login-code flow and the session cookie lifecycle.
type AuthHandler struct {
	svc          logincode.Service
	sessionTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(svc logincode.Service, sessionTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, sessionTTL: sessionTTL, secureCookie: secureCookie}
}

// RequestCode issues and delivers a one-time login code. The success body is
// identical for every well-formed address so the endpoint cannot be used to
// probe which emails exist.
func (h *AuthHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var body requestCodeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if err := h.svc.RequestCode(r.Context(), body.Email); err != nil {
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

// Verify checks a submitted email+code pair and, on success, establishes the
// session cookie.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err := validate.Struct(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	token, err := h.svc.VerifyCode(r.Context(), body.Email, body.Code)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCode) {
			writeError(w, http.StatusBadRequest, msgInvalidCode)
			return
		}
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}

// Logout clears the session cookie. The token itself stays valid until its
// expiry; there is no server-side session state to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, OKEnvelope{OK: true})
}
