package http

import (
	"errors"
	"net/http"

	"github.com/cartside/cartside/internal/auth/session"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/jwtx"
	"github.com/cartside/cartside/pkg/slogx"
)

// Authenticate guards a route with a standard-domain access token. The
// blacklist is consulted before the signature so a revoked token is turned
// away even while cryptographically valid; a blacklist outage fails open
// with a logged warning, since availability outranks the rare revoked
// token slipping through for its remaining minutes.
func Authenticate(codec *jwtx.Codec, blacklist *session.Blacklist) httpx.Middleware {
	return authenticate(codec, blacklist, false)
}

// AuthenticateAdmin is Authenticate against the elevated signing domain.
// Routes behind it only admit tokens minted by the admin sign-in.
func AuthenticateAdmin(codec *jwtx.Codec, blacklist *session.Blacklist) httpx.Middleware {
	return authenticate(codec, blacklist, true)
}

func authenticate(codec *jwtx.Codec, blacklist *session.Blacklist, elevated bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := httpx.ExtractBearer(r.Header.Get("Authorization"))
			if !ok {
				errMissingToken.Write(w)
				return
			}

			revoked, err := blacklist.Contains(ctx, raw)
			if err != nil {
				log.Warn("blacklist check failed, continuing without it", "error", err)
			} else if revoked {
				errRevokedToken.Write(w)
				return
			}

			claims, err := codec.Verify(raw, jwtx.KindAccess, elevated)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					errExpiredToken.Write(w)
					return
				}
				log.Info("access token rejected", "error", err)
				errInvalidToken.Write(w)
				return
			}

			id := claims.Identity()
			if elevated && !id.Admin {
				errForbidden.Write(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, id, raw)))
		})
	}
}

// RequireAdmin rejects authenticated callers whose identity is not admin.
// It sits behind Authenticate or AuthenticateAdmin and assumes the token
// has already been verified.
func RequireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				errMissingToken.Write(w)
				return
			}
			if !id.Admin {
				errForbidden.Write(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
