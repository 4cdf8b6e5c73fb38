package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-passwordless-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer and Audience are fixed claims on every session token. Verification
// rejects tokens carrying anything else.
const (
	Issuer   = "go-passwordless-api"
	Audience = "session"
)

// Claims holds the session token payload.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens. It is stateless given the
// secret; verification performs no I/O.
type Provider struct {
	secret []byte
	expiry time.Duration
}

// NewProvider builds a Provider from config. A missing SESSION_SECRET is an
// error here so callers can fail hard at startup instead of signing with an
// empty key.
func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	return &Provider{secret: []byte(cfg.SessionSecret), expiry: cfg.SessionTTL}, nil
}

// Expiry returns the configured session lifetime. Handlers mirror it as the
// cookie max-age.
func (p *Provider) Expiry() time.Duration { return p.expiry }

func (p *Provider) Sign(email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify validates signature, issuer, audience and expiry, returning the
// embedded email. Every failure mode comes back as a plain error; callers
// treat any error as "no session" and must not surface the reason.
func (p *Provider) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithAudience(Audience), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return "", errors.New("invalid token claims")
	}
	return claims.Email, nil
}
