package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// TokenService owns the refresh token lifecycle: issuing pairs, rotating
// refresh tokens and revoking them. Raw refresh tokens are generated here,
// handed to the caller and otherwise discarded; the store only ever sees
// their hashes.
type TokenService struct {
	store      ports.RefreshTokenStore
	hasher     ports.TokenHasher
	signer     ports.AccessTokenIssuer
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewTokenService builds a TokenService. A non-positive refresh TTL is a
// configuration error.
func NewTokenService(
	store ports.RefreshTokenStore,
	hasher ports.TokenHasher,
	signer ports.AccessTokenIssuer,
	refreshTTL time.Duration,
	logger *zap.Logger,
) (*TokenService, error) {
	if refreshTTL <= 0 {
		return nil, errors.New("refresh token ttl must be positive")
	}
	return &TokenService{
		store:      store,
		hasher:     hasher,
		signer:     signer,
		refreshTTL: refreshTTL,
		logger:     logger,
	}, nil
}

// RefreshTTL is the configured refresh token lifetime. The refresh cookie
// max-age must match it exactly.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Issue creates a fresh credential pair for the user. The refresh hash is
// persisted and the access token signed concurrently; persistence failure
// aborts the whole issuance, since an access token without a durable
// refresh token would strand the client at its first refresh. An orphaned
// refresh entry from a failed signing is cleaned up by its TTL.
func (s *TokenService) Issue(ctx context.Context, user core.AuthenticatedUser) (core.IssuedPair, error) {
	rawToken := uuid.NewString()
	hashedToken := s.hasher.Hash(rawToken)

	var access core.IssuedAccessToken
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		saved, err := s.store.Save(gctx, hashedToken, user.ID, s.refreshTTL)
		if err != nil {
			return core.Internal("persist refresh token", err)
		}
		if !saved {
			return core.Internal("refresh token was not persisted", nil)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		access, err = s.signer.Issue(user)
		if err != nil {
			return core.Internal("issue access token", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.IssuedPair{}, err
	}

	return core.IssuedPair{
		AccessToken:     access.Token,
		RawRefreshToken: rawToken,
		ExpiresIn:       access.ExpiresIn,
	}, nil
}

// Rotate atomically replaces the presented refresh token with a new one
// and returns the bound user id. An expired, never-issued or
// already-rotated token fails as unauthorized; a concurrent duplicate
// presentation of the same token loses the race and gets the same answer.
func (s *TokenService) Rotate(ctx context.Context, oldRawToken string) (core.RotatedRefreshToken, error) {
	oldHashed := s.hasher.Hash(oldRawToken)

	newRawToken := uuid.NewString()
	newHashed := s.hasher.Hash(newRawToken)

	userID, err := s.store.Rotate(ctx, oldHashed, newHashed, s.refreshTTL)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.RotatedRefreshToken{}, core.Unauthorized("invalid refresh token", err)
		}
		var ge *core.GatewayError
		if errors.As(err, &ge) {
			return core.RotatedRefreshToken{}, ge
		}
		return core.RotatedRefreshToken{}, core.Internal("rotate refresh token", err)
	}

	return core.RotatedRefreshToken{UserID: userID, RawToken: newRawToken}, nil
}

// IssueForRotated signs a new access token for the re-resolved user and
// pairs it with the already-rotated refresh token.
func (s *TokenService) IssueForRotated(user core.AuthenticatedUser, rawRefreshToken string) (core.IssuedPair, error) {
	access, err := s.signer.Issue(user)
	if err != nil {
		return core.IssuedPair{}, core.Internal("issue access token", err)
	}
	return core.IssuedPair{
		AccessToken:     access.Token,
		RawRefreshToken: rawRefreshToken,
		ExpiresIn:       access.ExpiresIn,
	}, nil
}

// Revoke deletes the refresh token. It never fails from the caller's
// perspective: revoking an absent or never-issued token is a no-op, and a
// store failure is logged and swallowed so logout stays idempotent. The
// hashed token is returned so the caller can announce the ended session.
func (s *TokenService) Revoke(ctx context.Context, rawToken string) string {
	hashedToken := s.hasher.Hash(rawToken)

	if _, err := s.store.Delete(ctx, hashedToken); err != nil {
		s.logger.Warn("refresh token revoke failed", zap.Error(err))
	}
	return hashedToken
}
