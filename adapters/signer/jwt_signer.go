package signer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// minSecretBytes is the minimum signing secret length. HS256 keys shorter
// than the hash output weaken the signature, so startup refuses them.
const minSecretBytes = 32

// accessClaims is the JWT payload of an access token.
type accessClaims struct {
	jwt.RegisteredClaims
	Nickname string   `json:"nickname"`
	Roles    []string `json:"roles"`
}

// JWTSigner issues and verifies HS256 access tokens with a single
// symmetric key derived once at construction.
type JWTSigner struct {
	key       []byte
	accessTTL time.Duration
}

var _ ports.AccessTokenIssuer = (*JWTSigner)(nil)

// New builds a JWTSigner. The secret must carry at least 32 bytes and the
// TTL must be positive; anything else is a configuration error and the
// process must not start.
func New(secret string, accessTTL time.Duration) (*JWTSigner, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("access token secret must be at least %d bytes", minSecretBytes)
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	return &JWTSigner{key: []byte(secret), accessTTL: accessTTL}, nil
}

// Issue signs an access token carrying the user's id, nickname and roles.
func (s *JWTSigner) Issue(user core.AuthenticatedUser) (core.IssuedAccessToken, error) {
	now := time.Now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Nickname: user.Nickname,
		Roles:    user.Roles,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return core.IssuedAccessToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return core.IssuedAccessToken{
		Token:     token,
		ExpiresIn: int64(s.accessTTL.Seconds()),
	}, nil
}

// Verify parses the token and checks signature and expiry. Bad signature,
// malformed structure and expiry all collapse into core.ErrInvalidToken.
func (s *JWTSigner) Verify(tokenStr string) (core.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return core.AccessClaims{}, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return core.AccessClaims{}, core.ErrInvalidToken
	}

	out := core.AccessClaims{
		UserID:    claims.Subject,
		Nickname:  claims.Nickname,
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
