package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-passwordless-api/internal/domain"
)

// CodeStore is an in-process login-code store. It exists for tests and local
// development only: state lives in one process, so behind multiple instances
// a code issued on one instance can never verify on another. Production uses
// the DynamoDB store.
type CodeStore struct {
	mu    sync.Mutex
	codes map[string]domain.LoginCode
}

func NewCodeStore() *CodeStore {
	return &CodeStore{codes: make(map[string]domain.LoginCode)}
}

func (s *CodeStore) Put(_ context.Context, c *domain.LoginCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[c.Email] = *c
	return nil
}

// Get returns the stored code even when it has passed its expiry; expiry is
// the caller's check, eviction happens on consume or overwrite.
func (s *CodeStore) Get(_ context.Context, email string) (*domain.LoginCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[email]
	if !ok {
		return nil, fmt.Errorf("login code not found: %w", domain.ErrNotFound)
	}
	return &c, nil
}

// DeleteIfMatch consumes the code for email only if the stored value equals
// code. Compare and delete happen under one lock, so of two racing
// verifications exactly one succeeds.
func (s *CodeStore) DeleteIfMatch(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[email]
	if !ok || c.Code != code {
		return fmt.Errorf("login code missing or mismatched: %w", domain.ErrNotFound)
	}
	delete(s.codes, email)
	return nil
}
