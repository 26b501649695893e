package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/todaybook/gateway/ports"
)

const (
	// LoginTopic carries successful login events.
	LoginTopic = "auth.login"

	// LogoutTopic carries revoked-session events so other instances can
	// react to ended sessions.
	LogoutTopic = "auth.logout"
)

// LoginEvent is published after a successful login.
type LoginEvent struct {
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LogoutEvent is published after a refresh session is revoked. SessionID
// is the hashed refresh token, already deleted when the event goes out.
type LogoutEvent struct {
	SessionID  string    `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher publishes auth lifecycle events through a watermill
// publisher (Redis streams in production).
type WatermillPublisher struct {
	publisher message.Publisher
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// NewWatermillPublisher wraps a watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID string) error {
	return p.publish(LoginTopic, LoginEvent{UserID: userID, OccurredAt: time.Now()})
}

// PublishLogout publishes a session-revoked event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, sessionID string) error {
	return p.publish(LogoutTopic, LogoutEvent{SessionID: sessionID, OccurredAt: time.Now()})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal auth event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
