// Package http exposes the authentication service over HTTP: credential
// endpoints under /v1/auth, the admin surface under /v1/admin and the
// health probes.
package http

import (
	"context"

	"github.com/cartside/cartside/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyIdentity ctxKey = "identity"
	ctxKeyToken    ctxKey = "token"
)

// IdentityFromContext returns the verified token identity attached by the
// Authenticate middleware.
func IdentityFromContext(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(jwtx.Identity)
	return id, ok
}

// TokenFromContext returns the raw bearer token the identity was minted
// from. Logout needs it to blacklist the exact credential presented.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxKeyToken).(string)
	return token, ok
}

func contextWithAuth(ctx context.Context, id jwtx.Identity, raw string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyIdentity, id)
	ctx = context.WithValue(ctx, ctxKeyToken, raw)
	return ctx
}
