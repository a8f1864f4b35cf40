package domain

import "time"

// RefreshTokenRecord is the registry entry for a live refresh token, stored
// in the cache keyed by (subject, jti) with a TTL equal to the remaining
// token life. Without this record the token is void even if its signature
// and expiry are still valid.
type RefreshTokenRecord struct {
	Subject   string    `json:"subject"`
	JTI       string    `json:"jti"`
	Token     string    `json:"token"`
	Elevated  bool      `json:"elevated,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BlacklistRecord marks an access token as revoked before its natural
// expiry. Keyed by the token's digest, never the raw token.
type BlacklistRecord struct {
	JTI           string    `json:"jti,omitempty"`
	Subject       string    `json:"subject"`
	BlacklistedAt time.Time `json:"blacklisted_at"`
}

// Session is what a successful sign-in/sign-up/refresh produces: the
// resolved user plus the token pair and the cookie lifetime for the
// refresh token.
type Session struct {
	User         User
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	Elevated     bool
}
