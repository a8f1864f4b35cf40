package http

import (
	"errors"
	"net/http"

	"github.com/cartside/cartside/internal/auth/service"
	"github.com/cartside/cartside/pkg/httpx"
	"github.com/cartside/cartside/pkg/slogx"
)

// OTPRequestHandler serves POST /v1/auth/otp/request. It always answers
// 202 for well-formed requests against unknown emails, so the endpoint
// cannot be used to probe which accounts exist.
type OTPRequestHandler struct {
	OTP *service.OTPService
}

func (h *OTPRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		errMissingFields.Write(w)
		return
	}

	if err := h.OTP.Request(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrOTPRateLimited) {
			errOTPRateLimited.Write(w)
			return
		}
		slogx.FromContext(ctx).Error("otp request failed", "error", err)
		errServer.Write(w)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// OTPLoginHandler serves POST /v1/auth/otp/login.
type OTPLoginHandler struct {
	OTP     *service.OTPService
	Cookies CookieConfig
}

func (h *OTPLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" {
		errMissingFields.Write(w)
		return
	}

	sess, err := h.OTP.Login(ctx, req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOTP):
			errInvalidOTP.Write(w)
		case errors.Is(err, service.ErrAdminAccount):
			errAdminAccount.Write(w)
		default:
			slogx.FromContext(ctx).Error("otp sign-in failed", "error", err)
			errServer.Write(w)
		}
		return
	}

	h.Cookies.setRefreshCookie(w, sess.RefreshToken, sess.RefreshTTL)
	httpx.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}
