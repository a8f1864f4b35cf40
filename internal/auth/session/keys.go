// Package session holds the server-side state for issued tokens: the
// registry of live refresh tokens and the blacklist of revoked access
// tokens. All state lives in the cache store so revocation is visible to
// every instance; nothing here is cached in process.
package session

import "github.com/cartside/cartside/pkg/cryptox"

// Cache key namespace. TTLs keep the whole namespace self-cleaning, so no
// garbage collection pass is ever needed.
const (
	refreshPrefix   = "auth:refresh:"
	blacklistPrefix = "auth:blacklist:"
)

// recordKey addresses a single refresh-token record.
func recordKey(subject, jti string) string {
	return refreshPrefix + subject + ":" + jti
}

// indexKey addresses the per-subject hash of jti -> issued-at, which makes
// "revoke everything for subject X" a single lookup.
func indexKey(subject string) string {
	return refreshPrefix + subject + ":tokens"
}

// blacklistKey addresses an access-token blacklist record. Only the digest
// is ever stored, never the raw token.
func blacklistKey(accessToken string) string {
	return blacklistPrefix + cryptox.FingerprintToken(accessToken)
}
