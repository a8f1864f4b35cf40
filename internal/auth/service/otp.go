package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/internal/auth/store"
	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/cryptox"
	"github.com/cartside/cartside/pkg/slogx"
)

const (
	otpPrefix     = "otp:"
	otpRatePrefix = "otp-ratelimit:"

	// PurposeLogin is the only OTP purpose today. The purpose sits in the
	// cache key so future purposes (password reset, email change) cannot
	// redeem each other's codes.
	PurposeLogin = "login"

	otpCodeLength = 6
)

type OTPService struct {
	Store  store.Store
	Cache  *cachex.Client
	Mailer Mailer
	Auth   *AuthService

	// CodeTTL bounds how long an issued code stays redeemable.
	CodeTTL time.Duration

	// RateLimit caps code requests per contact within RateWindow.
	RateLimit  int
	RateWindow time.Duration
}

// Request issues a one-time login code for the given email. An unknown
// email is reported as success so the endpoint cannot be used to probe
// which accounts exist; the rate limit is charged either way.
func (s *OTPService) Request(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	count, err := s.Cache.Increment(ctx, otpRateKey(email), s.RateWindow)
	if err != nil {
		return fmt.Errorf("service: failed to count otp requests: %w", err)
	}
	if count > int64(s.RateLimit) {
		slogx.FromContext(ctx).Info("otp request rate limited", slog.String("email", email))
		return ErrOTPRateLimited
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Info("otp requested for unknown email", slog.String("email", email))
			return nil
		}
		return err
	}

	code, err := cryptox.GenerateNumericCode(otpCodeLength)
	if err != nil {
		return fmt.Errorf("service: failed to generate otp: %w", err)
	}

	if err := s.Cache.SetJSON(ctx, otpKey(user.ID, PurposeLogin), code, s.CodeTTL); err != nil {
		return fmt.Errorf("service: failed to store otp: %w", err)
	}

	return s.Mailer.SendOTP(ctx, user.Email, code, s.CodeTTL)
}

// Login redeems a one-time code for a standard session. Codes are single
// use: a successful redemption deletes the code before tokens are issued,
// so a replay can never race the first use into a second session.
func (s *OTPService) Login(ctx context.Context, email, code string) (domain.Session, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidOTP
		}
		return domain.Session{}, err
	}

	var stored string
	if err := s.Cache.GetJSON(ctx, otpKey(user.ID, PurposeLogin), &stored); err != nil {
		if errors.Is(err, cachex.ErrMiss) {
			return domain.Session{}, ErrInvalidOTP
		}
		return domain.Session{}, fmt.Errorf("service: failed to read otp: %w", err)
	}

	if !cryptox.ConstantTimeEquals(stored, code) {
		return domain.Session{}, ErrInvalidOTP
	}

	if err := s.Cache.Delete(ctx, otpKey(user.ID, PurposeLogin)); err != nil {
		return domain.Session{}, fmt.Errorf("service: failed to consume otp: %w", err)
	}

	if user.Role == domain.RoleAdmin {
		return domain.Session{}, ErrAdminAccount
	}

	slogx.FromContext(ctx).Info("otp sign-in", slog.String("user_id", user.ID))
	return s.Auth.issueSession(ctx, user, false)
}

func otpKey(subject, purpose string) string {
	return otpPrefix + subject + ":" + purpose
}

func otpRateKey(contact string) string {
	return otpRatePrefix + contact
}
