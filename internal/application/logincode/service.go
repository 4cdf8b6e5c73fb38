package logincode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-passwordless-api/internal/domain"
	"github.com/go-passwordless-api/internal/pkg/id"
)

// CodeStore is the keyed store the service needs. DeleteIfMatch must be
// atomic: compare and delete may not interleave with another consumer.
type CodeStore interface {
	Put(ctx context.Context, c *domain.LoginCode) error
	Get(ctx context.Context, email string) (*domain.LoginCode, error)
	DeleteIfMatch(ctx context.Context, email, code string) error
}

// Mailer delivers the code to the inbox.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// TokenSigner mints a session token for a verified email.
type TokenSigner interface {
	Sign(email string) (string, error)
}

type Service interface {
	// RequestCode issues a fresh code for email and hands it to the mailer.
	// It succeeds regardless of delivery outcome so the response never
	// reveals whether an address is deliverable.
	RequestCode(ctx context.Context, email string) error
	// VerifyCode checks the submitted pair, consumes the code and returns a
	// signed session token. Missing, mismatched, expired and already-consumed
	// codes all come back as domain.ErrInvalidCode.
	VerifyCode(ctx context.Context, email, code string) (string, error)
}

type ServiceDeps struct {
	Codes   CodeStore
	Mailer  Mailer
	Tokens  TokenSigner
	CodeTTL time.Duration
	// LogCodes enables the local fallback channel: when delivery fails the
	// code is written to the log so the flow stays testable without a relay.
	// Must be off in production.
	LogCodes bool
}

type service struct {
	codes    CodeStore
	mailer   Mailer
	tokens   TokenSigner
	codeTTL  time.Duration
	logCodes bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		codes:    deps.Codes,
		mailer:   deps.Mailer,
		tokens:   deps.Tokens,
		codeTTL:  deps.CodeTTL,
		logCodes: deps.LogCodes,
	}
}

func (s *service) RequestCode(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)

	code, err := generateCode()
	if err != nil {
		return err
	}

	// Put overwrites any prior entry for this email: last code wins.
	lc := &domain.LoginCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.codeTTL).Unix(),
	}
	if err := s.codes.Put(ctx, lc); err != nil {
		return fmt.Errorf("store login code: %w", err)
	}

	deliveryID := id.New()
	minutes := int(s.codeTTL.Minutes())
	body := fmt.Sprintf("Your login code is %s. It expires in %d minutes.", code, minutes)
	if err := s.mailer.SendEmail(email, "Your login code", body); err != nil {
		// Delivery failure stays invisible to the client; the generic ack
		// must not reveal whether an address is deliverable.
		slog.Error("login code delivery failed", "delivery_id", deliveryID, "err", err)
		if s.logCodes {
			slog.Info("login code (delivery fallback)", "delivery_id", deliveryID, "email", email, "code", code)
		}
		return nil
	}
	slog.Info("login code sent", "delivery_id", deliveryID)
	return nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) (string, error) {
	email = domain.NormalizeEmail(email)

	lc, err := s.codes.Get(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("load login code: %w", err)
	}

	// One combined check: a missing, mismatched or expired code is the same
	// failure. Constant-time equality keeps the comparison itself from
	// narrowing a guess.
	valid := lc != nil &&
		subtle.ConstantTimeCompare([]byte(lc.Code), []byte(code)) == 1 &&
		time.Now().Unix() <= lc.ExpiresAt
	if !valid {
		return "", domain.ErrInvalidCode
	}

	// Single use: consume atomically. Losing the race to another verification
	// is indistinguishable from a wrong code.
	if err := s.codes.DeleteIfMatch(ctx, email, code); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCode
		}
		return "", fmt.Errorf("consume login code: %w", err)
	}

	token, err := s.tokens.Sign(email)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// generateCode returns a uniformly random 6-digit code. crypto/rand keeps the
// code unguessable even within the short TTL window.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate login code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
