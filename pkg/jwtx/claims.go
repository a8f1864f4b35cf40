package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens. A refresh token must
// never be accepted where an access token is expected and vice versa.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// The role claim is a closed set. Tokens carrying any other value are
// rejected when parsed, even under a valid signature.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the payload embedded verbatim in every signed token. It is
// immutable for the lifetime of that token: a role change does not
// retroactively alter tokens already issued.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Role    string
	Admin   bool
}

// Claims are the signed token claims. Custom fields are additive to keep
// older tokens decodable.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`

	// Admin marks tokens minted under the elevated signing domain.
	Admin bool `json:"adm,omitempty"`

	// Kind is "access" or "refresh".
	Kind Kind `json:"tkn,omitempty"`
}

// NewClaims builds minimally-correct claims for the given identity.
func NewClaims(id Identity, kind Kind, jti, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
		Admin: id.Admin,
		Kind:  kind,
	}
}

// Identity extracts the embedded identity payload.
func (c *Claims) Identity() Identity {
	return Identity{
		Subject: c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Role:    c.Role,
		Admin:   c.Admin,
	}
}

// Validate enforces the structural shape every deserialized token must have,
// independent of signature and expiry checks.
func (c *Claims) Validate() error {
	if c.Subject == "" {
		return ErrInvalidClaims
	}
	if c.Role != RoleUser && c.Role != RoleAdmin {
		return ErrInvalidClaims
	}
	if c.Kind != KindAccess && c.Kind != KindRefresh {
		return ErrInvalidClaims
	}
	return nil
}

// ExpiresIn reports the remaining lifetime at the given instant. Zero or
// negative means the token has expired.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
