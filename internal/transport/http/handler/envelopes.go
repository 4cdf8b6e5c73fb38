package handler

import (
	"encoding/json"
	"net/http"
)

// Fixed user-facing error strings. The verify flow deliberately collapses
// every lookup/match/expiry failure into one message.
const (
	msgInvalidEmail   = "Invalid email"
	msgInvalidPayload = "Invalid payload"
	msgInvalidCode    = "Invalid or expired code"
	msgInternal       = "Internal error"
)

// OKEnvelope is the generic acknowledgment body.
type OKEnvelope struct {
	OK bool `json:"ok"`
}

// ErrorEnvelope is the generic error body.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// SessionEnvelope reports the authenticated identity.
type SessionEnvelope struct {
	Email string `json:"email"`
}

// MessageEnvelope is used by operational endpoints (health checks).
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Error: msg})
}
