package http

import (
	"github.com/go-passwordless-api/internal/application/logincode"
	jwtinfra "github.com/go-passwordless-api/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router. The code store
// is constructed once at process start and injected here; handlers never
// reach for ambient globals.
type Deps struct {
	Codes  logincode.CodeStore
	Mailer logincode.Mailer
	Tokens *jwtinfra.Provider
}
