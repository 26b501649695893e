package ports

import "github.com/todaybook/gateway/core"

// AccessTokenIssuer signs and verifies self-contained access tokens. It is
// stateless beyond the cached signing key and safe for concurrent use.
type AccessTokenIssuer interface {
	// Issue signs an access token for the user with the configured TTL.
	Issue(user core.AuthenticatedUser) (core.IssuedAccessToken, error)

	// Verify checks signature and expiry. Every failure mode returns
	// core.ErrInvalidToken.
	Verify(token string) (core.AccessClaims, error)
}

// TokenHasher turns a raw refresh token into the one-way hash used as its
// storage key. Same input, same hash; the raw value is unrecoverable.
type TokenHasher interface {
	Hash(rawToken string) string
}
