package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// exchangeKeyPrefix namespaces exchange codes in the shared Redis.
const exchangeKeyPrefix = "auth:code:"

// RedisExchangeStore keeps one-time exchange codes in Redis. Consumption
// uses GETDEL so a code can never be observed twice, even under
// concurrent logins.
type RedisExchangeStore struct {
	client redis.UniversalClient
}

var _ ports.ExchangeCodeStore = (*RedisExchangeStore)(nil)

// NewRedisExchangeStore creates a Redis-backed exchange code store.
func NewRedisExchangeStore(client redis.UniversalClient) *RedisExchangeStore {
	return &RedisExchangeStore{client: client}
}

// Save stores the payload under the code with the given TTL.
func (s *RedisExchangeStore) Save(ctx context.Context, code string, payload core.ExchangePayload, ttl time.Duration) error {
	if strings.TrimSpace(code) == "" {
		return core.BadRequest("exchange code is empty")
	}
	if ttl <= 0 {
		return core.Internal("invalid exchange code ttl", nil)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return core.Internal("serialize exchange payload", err)
	}

	if err := s.client.Set(ctx, exchangeKey(code), data, ttl).Err(); err != nil {
		return core.Internal("persist exchange code", err)
	}
	return nil
}

// Consume atomically reads and deletes the payload bound to the code.
// Expiry and reuse are indistinguishable: both return core.ErrNotFound.
func (s *RedisExchangeStore) Consume(ctx context.Context, code string) (core.ExchangePayload, error) {
	if strings.TrimSpace(code) == "" {
		return core.ExchangePayload{}, core.ErrNotFound
	}

	data, err := s.client.GetDel(ctx, exchangeKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.ExchangePayload{}, core.ErrNotFound
		}
		return core.ExchangePayload{}, fmt.Errorf("consume exchange code: %w", err)
	}

	var payload core.ExchangePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return core.ExchangePayload{}, core.Internal("decode exchange payload", err)
	}
	return payload, nil
}

func exchangeKey(code string) string {
	return exchangeKeyPrefix + code
}
