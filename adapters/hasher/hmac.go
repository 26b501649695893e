package hasher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/todaybook/gateway/ports"
)

// minKeyBytes is the minimum hashing key length for HMAC-SHA256.
const minKeyBytes = 32

// HMACHasher derives the storage key for a refresh token with a keyed
// one-way hash. Without the server key an attacker holding a dumped store
// cannot forge a raw token that maps to a stored hash, and a stolen hash
// cannot be presented as a token.
type HMACHasher struct {
	key []byte
}

var _ ports.TokenHasher = (*HMACHasher)(nil)

// New builds an HMACHasher. Secrets shorter than 32 bytes fail fast.
func New(secret string) (*HMACHasher, error) {
	if len(secret) < minKeyBytes {
		return nil, fmt.Errorf("refresh token secret must be at least %d bytes", minKeyBytes)
	}
	return &HMACHasher{key: []byte(secret)}, nil
}

// Hash returns the base64 url-safe HMAC-SHA256 of the raw token, usable
// directly as a store key.
func (h *HMACHasher) Hash(rawToken string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(rawToken))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
