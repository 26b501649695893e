package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// refreshKeyPrefix namespaces hashed refresh tokens in the shared Redis.
const refreshKeyPrefix = "auth:refresh:"

// rotateScript performs the whole rotation as one server-side step: read
// the user bound to the old key, bail out with nil if it is gone, delete
// the old key, write the new one with the TTL, return the user id. Redis
// runs scripts serially, so of two concurrent rotations with the same old
// token exactly one sees the key and wins.
var rotateScript = redis.NewScript(`
local userId = redis.call("GET", KEYS[1])
if not userId then
    return nil
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], userId, "EX", ARGV[1])
return userId
`)

// RedisRefreshStore persists hashed refresh tokens mapped to user ids.
type RedisRefreshStore struct {
	client redis.UniversalClient
}

var _ ports.RefreshTokenStore = (*RedisRefreshStore)(nil)

// NewRedisRefreshStore creates a Redis-backed refresh token store.
func NewRedisRefreshStore(client redis.UniversalClient) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

// Save writes hashedToken -> userID with the given TTL.
func (s *RedisRefreshStore) Save(ctx context.Context, hashedToken, userID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, core.Internal("invalid refresh token ttl", nil)
	}
	if err := s.client.Set(ctx, refreshKey(hashedToken), userID, ttl).Err(); err != nil {
		return false, fmt.Errorf("persist refresh token: %w", err)
	}
	return true, nil
}

// Delete removes the entry, reporting whether a key actually existed.
func (s *RedisRefreshStore) Delete(ctx context.Context, hashedToken string) (bool, error) {
	deleted, err := s.client.Del(ctx, refreshKey(hashedToken)).Result()
	if err != nil {
		return false, fmt.Errorf("delete refresh token: %w", err)
	}
	return deleted > 0, nil
}

// Rotate replaces oldHashed with newHashed in a single scripted call. A
// missing old key means the token expired or was already rotated; both
// surface as core.ErrNotFound and leave the store untouched.
func (s *RedisRefreshStore) Rotate(ctx context.Context, oldHashed, newHashed string, ttl time.Duration) (string, error) {
	seconds := int64(ttl.Seconds())
	if seconds <= 0 {
		return "", core.Internal("invalid refresh token ttl", nil)
	}

	keys := []string{refreshKey(oldHashed), refreshKey(newHashed)}
	userID, err := rotateScript.Run(ctx, s.client, keys, strconv.FormatInt(seconds, 10)).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("rotate refresh token: %w", err)
	}
	return userID, nil
}

func refreshKey(hashedToken string) string {
	return refreshKeyPrefix + hashedToken
}
