package ports

import (
	"context"
	"time"

	"github.com/todaybook/gateway/core"
)

// ExchangeCodeStore holds one-time exchange codes issued by the OAuth
// success flow. A code is readable exactly once.
type ExchangeCodeStore interface {
	// Save binds the payload to the code for the given TTL.
	Save(ctx context.Context, code string, payload core.ExchangePayload, ttl time.Duration) error

	// Consume returns the payload and removes the entry in one atomic
	// step. Absent, expired and already-consumed codes all return
	// core.ErrNotFound.
	Consume(ctx context.Context, code string) (core.ExchangePayload, error)
}

// RefreshTokenStore persists hashed refresh tokens mapped to user ids.
// Implementations only ever see hashes; raw tokens never reach the store.
type RefreshTokenStore interface {
	// Save writes hashedToken -> userID with the given TTL.
	Save(ctx context.Context, hashedToken, userID string, ttl time.Duration) (bool, error)

	// Delete removes the entry. Deleting an absent key returns false,
	// never an error, so logout stays idempotent.
	Delete(ctx context.Context, hashedToken string) (bool, error)

	// Rotate atomically replaces oldHashed with newHashed: read the bound
	// user, delete the old key, write the new key with ttl, return the
	// user id. If the old key is gone the rotation fails with
	// core.ErrNotFound and no new entry is written. Two concurrent calls
	// with the same old token yield exactly one success.
	Rotate(ctx context.Context, oldHashed, newHashed string, ttl time.Duration) (string, error)
}
