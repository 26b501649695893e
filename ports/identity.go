package ports

import (
	"context"

	"github.com/todaybook/gateway/core"
)

// IdentityResolver maps provider identities to internal users via the user
// profile service.
type IdentityResolver interface {
	// ResolveOrCreate looks up the user bound to the provider identity,
	// creating the account on first sight.
	ResolveOrCreate(ctx context.Context, payload core.ExchangePayload) (core.AuthenticatedUser, error)

	// Load fetches the current user state by internal id. An unknown id
	// returns core.ErrNotFound.
	Load(ctx context.Context, userID string) (core.AuthenticatedUser, error)
}
