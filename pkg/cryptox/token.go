package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
)

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// This is what gets stored instead of the raw token wherever a lookup key is
// needed without retaining the original value (e.g. the access-token
// blacklist).
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateNumericCode returns a random numeric code of the given length,
// suitable for one-time passcodes sent out of band. Leading zeros are kept.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", length)
	}

	const digits = "0123456789"
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to generate code: %w", err)
		}
		code[i] = digits[n.Int64()]
	}
	return string(code), nil
}

// ConstantTimeEquals compares two short secrets (codes, digests) without
// leaking their contents through timing.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
