package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// AuthService orchestrates the login, refresh and logout flows on top of
// the exchange store, the identity resolver and the token lifecycle.
type AuthService struct {
	codes    ports.ExchangeCodeStore
	identity ports.IdentityResolver
	tokens   *TokenService
	events   ports.EventPublisher
	logger   *zap.Logger
}

// NewAuthService wires the auth orchestration. events may be nil when no
// bus is configured.
func NewAuthService(
	codes ports.ExchangeCodeStore,
	identity ports.IdentityResolver,
	tokens *TokenService,
	events ports.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		codes:    codes,
		identity: identity,
		tokens:   tokens,
		events:   events,
		logger:   logger,
	}
}

// Login consumes the one-time exchange code, resolves (or creates) the
// internal user behind the provider identity and issues a credential
// pair. A missing, expired or already-used code fails as unauthorized
// with no distinction between the causes.
func (s *AuthService) Login(ctx context.Context, authCode string) (core.IssuedPair, error) {
	if strings.TrimSpace(authCode) == "" {
		return core.IssuedPair{}, core.BadRequest("auth code is required")
	}

	payload, err := s.codes.Consume(ctx, authCode)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.IssuedPair{}, core.Unauthorized("auth code not found or already used", err)
		}
		return core.IssuedPair{}, wrapInternal("consume auth code", err)
	}

	user, err := s.identity.ResolveOrCreate(ctx, payload)
	if err != nil {
		return core.IssuedPair{}, wrapInternal("resolve user identity", err)
	}

	pair, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return core.IssuedPair{}, err
	}

	s.notifyLogin(ctx, user.ID)
	return pair, nil
}

// Refresh rotates the presented refresh token, re-resolves the user so
// the new access token reflects identity changes since the last issuance,
// and returns the new pair. A user that vanished since issuance is
// unauthorized, not an internal error.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (core.IssuedPair, error) {
	rotated, err := s.tokens.Rotate(ctx, rawRefreshToken)
	if err != nil {
		return core.IssuedPair{}, err
	}

	user, err := s.identity.Load(ctx, rotated.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.IssuedPair{}, core.Unauthorized("user no longer exists", err)
		}
		return core.IssuedPair{}, wrapInternal("load user", err)
	}

	return s.tokens.IssueForRotated(user, rotated.RawToken)
}

// Logout revokes the refresh token best-effort and always succeeds. A
// blank token (client never logged in, or already cleared) is a no-op.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) {
	if strings.TrimSpace(rawRefreshToken) == "" {
		return
	}

	sessionID := s.tokens.Revoke(ctx, rawRefreshToken)
	s.notifyLogout(ctx, sessionID)
}

func (s *AuthService) notifyLogin(ctx context.Context, userID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLogin(ctx, userID); err != nil {
		s.logger.Warn("login event publish failed", zap.Error(err))
	}
}

func (s *AuthService) notifyLogout(ctx context.Context, sessionID string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLogout(ctx, sessionID); err != nil {
		s.logger.Warn("logout event publish failed", zap.Error(err))
	}
}

// wrapInternal keeps an already-typed gateway error intact and wraps
// anything else as internal.
func wrapInternal(message string, err error) error {
	var ge *core.GatewayError
	if errors.As(err, &ge) {
		return ge
	}
	return core.Internal(message, err)
}
