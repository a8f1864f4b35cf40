// Package jwtx mints and verifies the service's bearer tokens.
//
// Tokens are HS256-signed in one of two independent signing domains: the
// standard domain for regular user sessions and an elevated domain for
// administrative sessions. Each domain has separate access and refresh
// secrets, so a token signed in one domain can never verify in the other.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cartside/cartside/pkg/idx"
)

// Default token lifetimes. Elevated sessions are deliberately shorter-lived.
const (
	DefaultAccessTTL       = time.Hour
	DefaultRefreshTTL      = 30 * 24 * time.Hour
	DefaultAdminAccessTTL  = 15 * time.Minute
	DefaultAdminRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrNotYetValid      = errors.New("jwtx: token not yet valid")
	ErrWrongKind        = errors.New("jwtx: wrong token kind")
	ErrInvalidClaims    = errors.New("jwtx: invalid claims")
)

// Secrets holds the four HMAC signing secrets, one per (domain, kind) pair.
// All four must be set; the config layer decides whether the elevated pair
// falls back to the standard one.
type Secrets struct {
	Access       []byte
	Refresh      []byte
	AdminAccess  []byte
	AdminRefresh []byte
}

// TTLs holds per-(domain, kind) token lifetimes.
type TTLs struct {
	Access       time.Duration
	Refresh      time.Duration
	AdminAccess  time.Duration
	AdminRefresh time.Duration
}

// Codec issues and verifies signed expiring bearer tokens. It performs no
// I/O; persistence and revocation live elsewhere.
type Codec struct {
	issuer  string
	secrets Secrets
	ttls    TTLs
}

func NewCodec(issuer string, secrets Secrets, ttls TTLs) (*Codec, error) {
	if len(secrets.Access) == 0 || len(secrets.Refresh) == 0 ||
		len(secrets.AdminAccess) == 0 || len(secrets.AdminRefresh) == 0 {
		return nil, errors.New("jwtx: all four signing secrets are required")
	}

	if ttls.Access <= 0 {
		ttls.Access = DefaultAccessTTL
	}
	if ttls.Refresh <= 0 {
		ttls.Refresh = DefaultRefreshTTL
	}
	if ttls.AdminAccess <= 0 {
		ttls.AdminAccess = DefaultAdminAccessTTL
	}
	if ttls.AdminRefresh <= 0 {
		ttls.AdminRefresh = DefaultAdminRefreshTTL
	}

	return &Codec{issuer: issuer, secrets: secrets, ttls: ttls}, nil
}

// IssueAccess mints a signed access token for the identity under the
// requested domain.
func (c *Codec) IssueAccess(id Identity, elevated bool) (string, error) {
	claims := NewClaims(id, KindAccess, idx.New().String(), c.issuer, c.AccessTTL(elevated), time.Now().UTC())
	return c.sign(claims, c.secret(KindAccess, elevated))
}

// IssueRefresh mints a signed refresh token carrying a fresh unique jti,
// which the token registry uses as its key.
func (c *Codec) IssueRefresh(id Identity, elevated bool) (string, error) {
	claims := NewClaims(id, KindRefresh, idx.New().String(), c.issuer, c.RefreshTTL(elevated), time.Now().UTC())
	return c.sign(claims, c.secret(KindRefresh, elevated))
}

// Verify checks signature, expiry, kind and claim shape under the given
// domain, returning the embedded claims. Failures are distinguishable so
// callers can treat an expired token differently from a tampered one.
func (c *Codec) Verify(token string, kind Kind, elevated bool) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			return c.secret(kind, elevated), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Claims{}, translateError(err)
	}

	if claims.Kind != kind {
		return Claims{}, ErrWrongKind
	}
	if err := claims.Validate(); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// Decode parses the claims without verifying the signature. The token
// registry uses it to read jti/subject before deciding which domain to
// verify under; its result must never be trusted on its own.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrMalformed
	}
	// ParseUnverified skips the claims validator, so apply it here.
	if err := claims.Validate(); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// AccessTTL returns the configured access lifetime for the domain.
func (c *Codec) AccessTTL(elevated bool) time.Duration {
	if elevated {
		return c.ttls.AdminAccess
	}
	return c.ttls.Access
}

// RefreshTTL returns the configured refresh lifetime for the domain.
func (c *Codec) RefreshTTL(elevated bool) time.Duration {
	if elevated {
		return c.ttls.AdminRefresh
	}
	return c.ttls.Refresh
}

// MaxRefreshTTL is the longer of the two refresh lifetimes. The registry
// sizes its per-subject index TTL from this.
func (c *Codec) MaxRefreshTTL() time.Duration {
	return max(c.ttls.Refresh, c.ttls.AdminRefresh)
}

func (c *Codec) sign(claims Claims, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (c *Codec) secret(kind Kind, elevated bool) []byte {
	switch {
	case kind == KindRefresh && elevated:
		return c.secrets.AdminRefresh
	case kind == KindRefresh:
		return c.secrets.Refresh
	case elevated:
		return c.secrets.AdminAccess
	default:
		return c.secrets.Access
	}
}

func translateError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	// The parser invokes Claims.Validate itself and wraps its error.
	case errors.Is(err, ErrInvalidClaims):
		return ErrInvalidClaims
	default:
		return ErrInvalidSignature
	}
}
