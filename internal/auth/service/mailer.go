package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cartside/cartside/pkg/slogx"
)

// Mailer delivers one-time codes to users. Delivery transport is outside
// this service; production wires a real provider behind this interface.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

// LogMailer writes codes to the log instead of sending anything. Suitable
// for development and tests only.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	slogx.FromContext(ctx).Info("otp code issued",
		slog.String("to", to),
		slog.String("code", code),
		slog.Duration("ttl", ttl),
	)
	return nil
}
