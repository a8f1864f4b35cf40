// Package service implements the sign-up, sign-in, refresh and sign-out
// flows on top of the token codec, the session state and the identity
// store. HTTP handlers translate these sentinels to status codes.
package service

import "errors"

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password" so the two are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrEmailTaken reports a registration against an existing email.
	ErrEmailTaken = errors.New("email_taken")

	// ErrAdminAccount reports an admin identity presented to a standard
	// sign-in flow. Deliberately distinct from ErrInvalidCredentials so
	// operators can spot admins using the wrong door.
	ErrAdminAccount = errors.New("admin_account")

	// ErrInvalidRefresh reports a refresh credential that is revoked,
	// expired, malformed or otherwise unusable.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrInvalidOTP reports a one-time code that is absent, expired or
	// simply wrong.
	ErrInvalidOTP = errors.New("invalid_otp")

	// ErrOTPRateLimited reports too many code requests for one contact
	// within the rolling window.
	ErrOTPRateLimited = errors.New("otp_rate_limited")
)
