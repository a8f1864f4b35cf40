package http

import (
	"net/http"

	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout. Sign-out never fails: the
// access token is blacklisted best effort, the cookie's refresh token is
// revoked when present and otherwise every refresh token belonging to the
// bearer is revoked, and the cookie is cleared no matter what the request
// carried. The route is deliberately not behind the auth middleware so an
// expired access token can still end its session.
type LogoutHandler struct {
	Auth    *service.AuthService
	Cookies CookieConfig
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Everywhere bool `json:"everywhere"`
	}
	// An empty or malformed body means a plain single-session logout.
	_ = decodeBestEffort(r, &req)

	accessToken, _ := httpx.ExtractBearer(r.Header.Get("Authorization"))
	refreshToken, _ := refreshTokenFromRequest(r)

	var subject string
	if id, ok := IdentityFromContext(ctx); ok {
		subject = id.Subject
	}

	h.Auth.Logout(ctx, subject, accessToken, refreshToken, req.Everywhere)

	h.Cookies.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
