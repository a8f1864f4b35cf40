package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cartside/cartside/internal/auth/domain"
)

// captureMailer records the last code handed to it.
type captureMailer struct {
	mu   sync.Mutex
	to   string
	code string
}

func (m *captureMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to, m.code = to, code
	return nil
}

func (m *captureMailer) last() (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.to, m.code
}

func newOTPFixture(t *testing.T) (*fixture, *OTPService, *captureMailer) {
	t.Helper()

	f := newFixture(t)
	mailer := &captureMailer{}
	svc := &OTPService{
		Store:      f.store,
		Cache:      f.cache,
		Mailer:     mailer,
		Auth:       f.auth,
		CodeTTL:    5 * time.Minute,
		RateLimit:  3,
		RateWindow: time.Minute,
	}
	return f, svc, mailer
}

func TestOTPRequest(t *testing.T) {
	t.Parallel()

	f, svc, mailer := newOTPFixture(t)
	ctx := context.Background()
	f.seedUser(t, "shopper@example.com", "correct horse", domain.RoleUser)

	t.Run("delivers a six digit code", func(t *testing.T) {
		require.NoError(t, svc.Request(ctx, "Shopper@Example.com"))

		to, code := mailer.last()
		require.Equal(t, "shopper@example.com", to)
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
	})

	t.Run("unknown email reports success", func(t *testing.T) {
		require.NoError(t, svc.Request(ctx, "nobody@example.com"))

		// Nothing was delivered for it.
		to, _ := mailer.last()
		require.Equal(t, "shopper@example.com", to)
	})

	t.Run("rate limit caps requests per contact", func(t *testing.T) {
		// Two more on top of the first request exhausts the budget of 3.
		require.NoError(t, svc.Request(ctx, "shopper@example.com"))
		require.NoError(t, svc.Request(ctx, "shopper@example.com"))
		require.ErrorIs(t, svc.Request(ctx, "shopper@example.com"), ErrOTPRateLimited)

		// Other contacts keep their own budget.
		require.NoError(t, svc.Request(ctx, "someone-else@example.com"))
	})

	t.Run("window expiry resets the budget", func(t *testing.T) {
		f.redis.FastForward(2 * time.Minute)
		require.NoError(t, svc.Request(ctx, "shopper@example.com"))
	})

	t.Run("cache keys use the otp namespace", func(t *testing.T) {
		user := f.seedUser(t, "keys@example.com", "correct horse", domain.RoleUser)
		require.NoError(t, svc.Request(ctx, "keys@example.com"))

		require.True(t, f.redis.Exists("otp:"+user.ID+":"+PurposeLogin))
		require.True(t, f.redis.Exists("otp-ratelimit:keys@example.com"))
	})
}

func TestOTPLogin(t *testing.T) {
	t.Parallel()

	f, svc, mailer := newOTPFixture(t)
	ctx := context.Background()
	f.seedUser(t, "shopper@example.com", "correct horse", domain.RoleUser)

	t.Run("valid code signs in and is single use", func(t *testing.T) {
		require.NoError(t, svc.Request(ctx, "shopper@example.com"))
		_, code := mailer.last()

		sess, err := svc.Login(ctx, "shopper@example.com", code)
		require.NoError(t, err)
		require.Equal(t, "shopper@example.com", sess.User.Email)
		require.False(t, sess.Elevated)
		require.NotEmpty(t, sess.AccessToken)

		// Redeeming the same code again must fail.
		_, err = svc.Login(ctx, "shopper@example.com", code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("wrong code", func(t *testing.T) {
		require.NoError(t, svc.Request(ctx, "shopper@example.com"))

		_, err := svc.Login(ctx, "shopper@example.com", "000000")
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("expired code", func(t *testing.T) {
		require.NoError(t, svc.Request(ctx, "shopper@example.com"))
		_, code := mailer.last()

		f.redis.FastForward(svc.CodeTTL + time.Second)

		_, err := svc.Login(ctx, "shopper@example.com", code)
		require.ErrorIs(t, err, ErrInvalidOTP)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "123456")
		require.ErrorIs(t, err, ErrInvalidOTP)
	})
}
