package logincode

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-passwordless-api/internal/domain"
	"github.com/go-passwordless-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) Put(ctx context.Context, c *domain.LoginCode) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCodeStore) Get(ctx context.Context, email string) (*domain.LoginCode, error) {
	args := m.Called(ctx, email)
	if c, _ := args.Get(0).(*domain.LoginCode); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCodeStore) DeleteIfMatch(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(cs CodeStore, ml Mailer, ts TokenSigner) Service {
	return NewService(ServiceDeps{
		Codes:   cs,
		Mailer:  ml,
		Tokens:  ts,
		CodeTTL: 10 * time.Minute,
	})
}

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// --- RequestCode ---

func TestRequestCode_StoresAndSends(t *testing.T) {
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	var stored *domain.LoginCode
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginCode")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.LoginCode) }).
		Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(cs, ml, nil)
	require.NoError(t, svc.RequestCode(context.Background(), "a@b.com"))

	require.NotNil(t, stored)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.Regexp(t, sixDigits, stored.Code)

	ttl := time.Until(time.Unix(stored.ExpiresAt, 0))
	assert.InDelta(t, (10 * time.Minute).Seconds(), ttl.Seconds(), 5)

	ml.AssertExpectations(t)
}

func TestRequestCode_NormalizesEmail(t *testing.T) {
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	var stored *domain.LoginCode
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginCode")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.LoginCode) }).
		Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newService(cs, ml, nil)
	require.NoError(t, svc.RequestCode(context.Background(), "  A@B.com "))

	require.NotNil(t, stored)
	assert.Equal(t, "a@b.com", stored.Email)
}

func TestRequestCode_MailFailureStillSucceeds(t *testing.T) {
	cs := &mockCodeStore{}
	ml := &mockMailer{}

	cs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(errors.New("relay down"))

	svc := newService(cs, ml, nil)
	assert.NoError(t, svc.RequestCode(context.Background(), "a@b.com"))
}

func TestRequestCode_StoreFailurePropagates(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := newService(cs, nil, nil)
	assert.Error(t, svc.RequestCode(context.Background(), "a@b.com"))
}

// --- VerifyCode ---

func validCode(code string) *domain.LoginCode {
	return &domain.LoginCode{
		Email:     "a@b.com",
		Code:      code,
		ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
	}
}

func TestVerifyCode_HappyPath(t *testing.T) {
	cs := &mockCodeStore{}
	ts := &mockSigner{}

	cs.On("Get", mock.Anything, "a@b.com").Return(validCode("123456"), nil)
	cs.On("DeleteIfMatch", mock.Anything, "a@b.com", "123456").Return(nil)
	ts.On("Sign", "a@b.com").Return("session-token", nil)

	svc := newService(cs, nil, ts)
	token, err := svc.VerifyCode(context.Background(), "A@B.com", "123456")

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	cs.AssertExpectations(t)
	ts.AssertExpectations(t)
}

func TestVerifyCode_NoCode(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("Get", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestVerifyCode_WrongCode(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("Get", mock.Anything, "a@b.com").Return(validCode("123456"), nil)

	svc := newService(cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "000000")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestVerifyCode_Expired(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("Get", mock.Anything, "a@b.com").Return(&domain.LoginCode{
		Email:     "a@b.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)

	svc := newService(cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestVerifyCode_ConsumeRaceLoser(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("Get", mock.Anything, "a@b.com").Return(validCode("123456"), nil)
	// Another request consumed the code between Get and DeleteIfMatch.
	cs.On("DeleteIfMatch", mock.Anything, "a@b.com", "123456").Return(domain.ErrNotFound)

	svc := newService(cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestVerifyCode_StoreErrorIsNotInvalidCode(t *testing.T) {
	cs := &mockCodeStore{}
	cs.On("Get", mock.Anything, "a@b.com").Return(nil, errors.New("dynamo down"))

	svc := newService(cs, nil, nil)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestVerifyCode_SignerFailurePropagates(t *testing.T) {
	cs := &mockCodeStore{}
	ts := &mockSigner{}
	cs.On("Get", mock.Anything, "a@b.com").Return(validCode("123456"), nil)
	cs.On("DeleteIfMatch", mock.Anything, "a@b.com", "123456").Return(nil)
	ts.On("Sign", "a@b.com").Return("", errors.New("no secret"))

	svc := newService(cs, nil, ts)
	_, err := svc.VerifyCode(context.Background(), "a@b.com", "123456")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCode))
}

// --- end to end against the memory store ---

type stubMailer struct{ lastBody string }

func (m *stubMailer) SendEmail(_, _, body string) error {
	m.lastBody = body
	return nil
}

type stubSigner struct{}

func (stubSigner) Sign(email string) (string, error) { return "token-for-" + email, nil }

func TestSingleUse_AgainstMemoryStore(t *testing.T) {
	store := memory.NewCodeStore()
	svc := NewService(ServiceDeps{
		Codes:   store,
		Mailer:  &stubMailer{},
		Tokens:  stubSigner{},
		CodeTTL: 10 * time.Minute,
	})
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "a@b.com"))
	issued, err := store.Get(ctx, "a@b.com")
	require.NoError(t, err)

	token, err := svc.VerifyCode(ctx, "a@b.com", issued.Code)
	require.NoError(t, err)
	assert.Equal(t, "token-for-a@b.com", token)

	// Replay with the exact same code fails like any bad code.
	_, err = svc.VerifyCode(ctx, "a@b.com", issued.Code)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestOverwrite_AgainstMemoryStore(t *testing.T) {
	store := memory.NewCodeStore()
	svc := NewService(ServiceDeps{
		Codes:   store,
		Mailer:  &stubMailer{},
		Tokens:  stubSigner{},
		CodeTTL: 10 * time.Minute,
	})
	ctx := context.Background()

	require.NoError(t, svc.RequestCode(ctx, "a@b.com"))
	first, err := store.Get(ctx, "a@b.com")
	require.NoError(t, err)

	require.NoError(t, svc.RequestCode(ctx, "a@b.com"))
	second, err := store.Get(ctx, "a@b.com")
	require.NoError(t, err)

	if first.Code != second.Code {
		// The stale code is dead well before its own expiry.
		_, err = svc.VerifyCode(ctx, "a@b.com", first.Code)
		assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	}

	_, err = svc.VerifyCode(ctx, "a@b.com", second.Code)
	assert.NoError(t, err)
}
