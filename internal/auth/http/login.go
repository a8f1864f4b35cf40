package http

import (
	"errors"
	"net/http"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login and POST /v1/auth/admin/login.
// The Admin flag selects which service flow and signing domain apply.
type LoginHandler struct {
	Auth    *service.AuthService
	Cookies CookieConfig
	Admin   bool
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		errMissingFields.Write(w)
		return
	}

	sess, err := h.login(r, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			errInvalidCredentials.Write(w)
		case errors.Is(err, service.ErrAdminAccount):
			errAdminAccount.Write(w)
		default:
			slogx.FromContext(ctx).Error("sign-in failed", "error", err)
			errServer.Write(w)
		}
		return
	}

	h.Cookies.setRefreshCookie(w, sess.RefreshToken, sess.RefreshTTL)
	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *LoginHandler) login(r *http.Request, email, password string) (domain.Session, error) {
	if h.Admin {
		return h.Auth.AdminLogin(r.Context(), email, password)
	}
	return h.Auth.Login(r.Context(), email, password)
}
