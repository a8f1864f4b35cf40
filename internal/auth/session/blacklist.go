package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartside/cartside/internal/auth/domain"
	"github.com/cartside/cartside/pkg/cachex"
	"github.com/cartside/cartside/pkg/jwtx"
)

// Blacklist records access tokens that must be rejected before their
// natural expiry (i.e. after logout). Entries carry a TTL equal to the
// token's remaining lifetime, so the blacklist never outgrows the set of
// tokens that could still be replayed.
type Blacklist struct {
	cache *cachex.Client
	codec *jwtx.Codec
}

func NewBlacklist(cache *cachex.Client, codec *jwtx.Codec) *Blacklist {
	return &Blacklist{cache: cache, codec: codec}
}

// Add blacklists an access token. The token is verified (standard domain
// first, elevated as fallback) to obtain its expiry; an already-expired
// token is treated as success since it can no longer be replayed anyway.
func (b *Blacklist) Add(ctx context.Context, accessToken string) error {
	claims, err := b.codec.Verify(accessToken, jwtx.KindAccess, false)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil
		}
		claims, err = b.codec.Verify(accessToken, jwtx.KindAccess, true)
		if errors.Is(err, jwtx.ErrExpired) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("session: cannot blacklist unverifiable token: %w", err)
		}
	}

	now := time.Now().UTC()
	ttl := claims.ExpiresIn(now)
	if ttl <= 0 {
		return nil
	}

	record := domain.BlacklistRecord{
		JTI:           claims.ID,
		Subject:       claims.Subject,
		BlacklistedAt: now,
	}

	if err := b.cache.SetJSON(ctx, blacklistKey(accessToken), record, ttl); err != nil {
		return fmt.Errorf("session: failed to blacklist token: %w", err)
	}
	return nil
}

// Contains reports whether this exact access token has been blacklisted.
// Callers on the request path check this before signature verification so a
// revoked-but-still-valid token is rejected early.
func (b *Blacklist) Contains(ctx context.Context, accessToken string) (bool, error) {
	return b.cache.Exists(ctx, blacklistKey(accessToken))
}
