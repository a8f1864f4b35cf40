package slogx

import (
	"context"
	"log/slog"
)

// BestEffort runs an operation whose failure must not fail the surrounding
// flow (e.g. blacklisting an access token during logout). The failure is
// always logged with the operation name; the return value tells the caller
// whether it succeeded, and the caller is free to ignore it.
//
// Keeping every log-and-continue path behind this one helper means a flow
// either tolerates a failure explicitly or propagates the error, never
// something silently in between.
func BestEffort(ctx context.Context, op string, fn func() error) bool {
	if err := fn(); err != nil {
		FromContext(ctx).Warn("best-effort operation failed",
			slog.String("op", op),
			slog.Any("error", err),
		)
		return false
	}
	return true
}
