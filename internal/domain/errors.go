package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidCode covers missing, mismatched, expired and already-consumed
	// codes alike. Callers must never distinguish those cases to the client.
	ErrInvalidCode = errors.New("invalid or expired code")
)
