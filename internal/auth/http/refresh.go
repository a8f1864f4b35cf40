package http

import (
	"errors"
	"net/http"

	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh. The refresh credential is
// read from the cookie and nowhere else; a rejected credential clears the
// cookie so the client stops retrying a dead session.
type RefreshHandler struct {
	Auth    *service.AuthService
	Cookies CookieConfig
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := refreshTokenFromRequest(r)
	if !ok {
		errInvalidRefresh.Write(w)
		return
	}

	sess, err := h.Auth.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			h.Cookies.clearRefreshCookie(w)
			errInvalidRefresh.Write(w)
			return
		}
		slogx.FromContext(ctx).Error("token refresh failed", "error", err)
		errServer.Write(w)
		return
	}

	// Same refresh token, remaining lifetime; the cookie horizon must not
	// silently extend past the signed expiry.
	h.Cookies.setRefreshCookie(w, sess.RefreshToken, sess.RefreshTTL)
	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}
