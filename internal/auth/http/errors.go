package http

import (
	"net/http"

	"github.com/cartside/cartside/pkg/httpx"
)

// Canonical error responses. Handlers map service sentinels onto these so
// the wire format stays uniform across endpoints.
var (
	errInvalidBody = httpx.NewError(http.StatusBadRequest,
		"invalid_request", "request body could not be parsed")
	errMissingFields = httpx.NewError(http.StatusBadRequest,
		"invalid_request", "required fields are missing")
	errInvalidCredentials = httpx.NewError(http.StatusUnauthorized,
		"invalid_credentials", "email or password is incorrect")
	errAdminAccount = httpx.NewError(http.StatusForbidden,
		"admin_account", "admin accounts must use the admin sign-in")
	errEmailTaken = httpx.NewError(http.StatusConflict,
		"email_taken", "an account with this email already exists")
	errMissingToken = httpx.NewError(http.StatusUnauthorized,
		"invalid_token", "missing bearer token")
	errExpiredToken = httpx.NewError(http.StatusUnauthorized,
		"token_expired", "access token has expired")
	errRevokedToken = httpx.NewError(http.StatusUnauthorized,
		"token_revoked", "access token has been revoked")
	errInvalidToken = httpx.NewError(http.StatusForbidden,
		"invalid_token", "access token is invalid")
	errForbidden = httpx.NewError(http.StatusForbidden,
		"forbidden", "admin privileges required")
	errInvalidRefresh = httpx.NewError(http.StatusUnauthorized,
		"invalid_refresh_token", "refresh credential is missing or invalid")
	errInvalidOTP = httpx.NewError(http.StatusUnauthorized,
		"invalid_otp", "one-time code is invalid or expired")
	errOTPRateLimited = httpx.NewError(http.StatusTooManyRequests,
		"otp_rate_limited", "too many code requests, try again later")
	errServer = httpx.NewError(http.StatusInternalServerError,
		"server_error", "something went wrong")
)
