package http

import (
	"errors"
	"net/http"

	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/slogx"
)

// RegisterHandler serves POST /v1/auth/register.
type RegisterHandler struct {
	Auth    *service.AuthService
	Cookies CookieConfig
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" || len(req.Password) < 8 {
		errMissingFields.Write(w)
		return
	}

	sess, err := h.Auth.Register(ctx, service.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			errEmailTaken.Write(w)
			return
		}
		slogx.FromContext(ctx).Error("registration failed", "error", err)
		errServer.Write(w)
		return
	}

	h.Cookies.setRefreshCookie(w, sess.RefreshToken, sess.RefreshTTL)
	httpx.WriteJSON(w, http.StatusCreated, newSessionResponse(sess))
}
