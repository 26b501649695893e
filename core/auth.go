package core

import "time"

// ExchangePayload is the identity handed over by the OAuth success flow.
// It is stored under a one-time exchange code and consumed exactly once
// during login.
type ExchangePayload struct {
	Provider       string `json:"provider"`
	ProviderUserID string `json:"provider_user_id"`
	Nickname       string `json:"nickname"`
}

// AuthenticatedUser is the internal identity a credential is issued for.
// The user profile service owns the record; the gateway only carries the
// attributes needed to build credentials and trust headers.
type AuthenticatedUser struct {
	ID       string   // Internal user identifier
	Nickname string   // Display name, may contain non-ASCII characters
	Roles    []string // Role names granted to the user
}

// AccessClaims are the verified contents of an access token.
type AccessClaims struct {
	UserID    string
	Nickname  string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedAccessToken is a freshly signed access token with its lifetime.
type IssuedAccessToken struct {
	Token     string
	ExpiresIn int64 // Seconds until expiry, returned to the client as-is
}

// IssuedPair is the response unit of login and refresh: a signed access
// token plus the raw refresh token. The raw refresh token exists only in
// this value and in the client's cookie; the stores only ever see its hash.
type IssuedPair struct {
	AccessToken     string
	RawRefreshToken string
	ExpiresIn       int64
}

// RotatedRefreshToken is the outcome of an atomic refresh rotation: the
// user the old token was bound to and the replacement raw token.
type RotatedRefreshToken struct {
	UserID   string
	RawToken string
}
