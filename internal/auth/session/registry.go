package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/jwtx"
	"github.com/cartside/cartside/pkg/slogx"
)

var (
	// ErrTokenExpired reports an attempt to register a refresh token whose
	// remaining lifetime is already zero or negative.
	ErrTokenExpired = errors.New("session: token already expired")

	// ErrMalformedToken reports a token the registry cannot decode far
	// enough to find a subject and jti.
	ErrMalformedToken = errors.New("session: malformed token")

	// ErrRevoked reports a refresh token with no live registry record:
	// revoked, expired out of the cache, or never issued by us.
	ErrRevoked = errors.New("session: token not found or revoked")
)

// Registry is the authoritative record of live refresh tokens. A refresh
// token is only usable while its registry record exists and matches the
// presented raw token exactly.
type Registry struct {
	cache *cachex.Client
	codec *jwtx.Codec
}

func NewRegistry(cache *cachex.Client, codec *jwtx.Codec) *Registry {
	return &Registry{cache: cache, codec: codec}
}

// Save persists a freshly issued refresh token under its (subject, jti) key
// with a TTL equal to its remaining lifetime, and adds the jti to the
// subject's index. The index TTL is set to double the longest refresh
// lifetime so it outlives every entry it may reference; full revocation
// clears it explicitly.
func (r *Registry) Save(ctx context.Context, token string, elevated bool) error {
	claims, err := r.codec.Decode(token)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return ErrMalformedToken
	}

	now := time.Now().UTC()
	ttl := claims.ExpiresIn(now)
	if ttl <= 0 {
		return ErrTokenExpired
	}

	record := domain.RefreshTokenRecord{
		Subject:   claims.Subject,
		JTI:       claims.ID,
		Token:     token,
		Elevated:  elevated,
		CreatedAt: now,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if err := r.cache.SetJSON(ctx, recordKey(claims.Subject, claims.ID), record, ttl); err != nil {
		return fmt.Errorf("session: failed to save refresh token: %w", err)
	}

	issuedAt := strconv.FormatInt(now.Unix(), 10)
	if err := r.cache.HSet(ctx, indexKey(claims.Subject), claims.ID, issuedAt); err != nil {
		return fmt.Errorf("session: failed to index refresh token: %w", err)
	}
	if err := r.cache.Expire(ctx, indexKey(claims.Subject), 2*r.codec.MaxRefreshTTL()); err != nil {
		return fmt.Errorf("session: failed to expire token index: %w", err)
	}

	return nil
}

// Verify checks a presented refresh token against the registry and only
// then against its signature, returning the embedded claims.
//
// The registry lookup happens before signature verification on purpose: the
// record decides which signing domain the token was minted under, and a
// registry miss must read as "revoked" regardless of how valid the token
// still looks cryptographically.
func (r *Registry) Verify(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := r.codec.Decode(token)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return jwtx.Claims{}, ErrMalformedToken
	}

	var record domain.RefreshTokenRecord
	if err := r.cache.GetJSON(ctx, recordKey(claims.Subject, claims.ID), &record); err != nil {
		if errors.Is(err, cachex.ErrMiss) {
			return jwtx.Claims{}, ErrRevoked
		}
		return jwtx.Claims{}, fmt.Errorf("session: failed to look up refresh token: %w", err)
	}

	// The stored raw token must match exactly; a re-minted token reusing a
	// jti must not resurrect an old record.
	if subtle.ConstantTimeCompare([]byte(record.Token), []byte(token)) != 1 {
		return jwtx.Claims{}, ErrRevoked
	}

	verified, err := r.codec.Verify(token, jwtx.KindRefresh, record.Elevated)
	if err != nil {
		return jwtx.Claims{}, err
	}

	return verified, nil
}

// Revoke removes exactly this token's record and index entry, never its
// siblings. It reports success rather than failing, so logout flows stay
// idempotent even when handed garbage.
func (r *Registry) Revoke(ctx context.Context, token string) bool {
	claims, err := r.codec.Decode(token)
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return false
	}

	ok := slogx.BestEffort(ctx, "registry.revoke.record", func() error {
		return r.cache.Delete(ctx, recordKey(claims.Subject, claims.ID))
	})
	ok = slogx.BestEffort(ctx, "registry.revoke.index", func() error {
		return r.cache.HDelete(ctx, indexKey(claims.Subject), claims.ID)
	}) && ok

	return ok
}

// RevokeAll removes every refresh token listed in the subject's index, then
// the index itself. Returns false on any storage error instead of failing,
// since sign-out must complete regardless.
func (r *Registry) RevokeAll(ctx context.Context, subject string) bool {
	if subject == "" {
		return false
	}

	jtis, err := r.cache.HGetAll(ctx, indexKey(subject))
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to read token index for revocation",
			"subject", subject, "error", err)
		return false
	}

	keys := make([]string, 0, len(jtis)+1)
	for jti := range jtis {
		keys = append(keys, recordKey(subject, jti))
	}
	keys = append(keys, indexKey(subject))

	return slogx.BestEffort(ctx, "registry.revoke_all", func() error {
		return r.cache.Delete(ctx, keys...)
	})
}
