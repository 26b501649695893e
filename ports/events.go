package ports

import "context"

// EventPublisher notifies other services about auth lifecycle changes.
// Publishing is best-effort; failures are logged, never surfaced.
type EventPublisher interface {
	// PublishLogin announces a successful login for the user.
	PublishLogin(ctx context.Context, userID string) error

	// PublishLogout announces a revoked refresh session. The session is
	// identified by its hashed token, which is dead by the time the event
	// is published; the raw token never reaches the bus.
	PublishLogout(ctx context.Context, sessionID string) error
}
