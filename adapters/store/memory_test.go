package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todaybook/gateway/core"
)

func TestExchangeCodeConsumedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExchangeStore()

	payload := core.ExchangePayload{Provider: "kakao", ProviderUserID: "42", Nickname: "Ann"}
	require.NoError(t, s.Save(ctx, "abc", payload, time.Minute))

	got, err := s.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExchangeCodeExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExchangeStore()

	require.NoError(t, s.Save(ctx, "abc", core.ExchangePayload{Provider: "kakao"}, time.Nanosecond))
	time.Sleep(time.Millisecond)

	_, err := s.Consume(ctx, "abc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExchangeCodeRejectsBlank(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExchangeStore()

	err := s.Save(ctx, "  ", core.ExchangePayload{}, time.Minute)
	require.Error(t, err)
	assert.Equal(t, core.CodeBadRequest, core.CodeOf(err))

	_, err = s.Consume(ctx, "")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExchangeConcurrentConsumeSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryExchangeStore()
	require.NoError(t, s.Save(ctx, "abc", core.ExchangePayload{ProviderUserID: "42"}, time.Minute))

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, "abc"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestRefreshRotateBindsSameUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()

	_, err := s.Save(ctx, "old-hash", "user-7", time.Hour)
	require.NoError(t, err)

	userID, err := s.Rotate(ctx, "old-hash", "new-hash", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)

	// Old token is gone; the new one carries the binding.
	_, err = s.Rotate(ctx, "old-hash", "other-hash", time.Hour)
	assert.ErrorIs(t, err, core.ErrNotFound)

	userID, err = s.Rotate(ctx, "new-hash", "next-hash", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)
}

func TestRefreshRotateConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()

	_, err := s.Save(ctx, "old-hash", "user-7", time.Hour)
	require.NoError(t, err)

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			userID, err := s.Rotate(ctx, "old-hash", newHash(i), time.Hour)
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
				assert.Equal(t, "user-7", userID)
			} else {
				assert.ErrorIs(t, err, core.ErrNotFound)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, s.Len())
}

func newHash(i int) string {
	return "new-hash-" + string(rune('a'+i))
}

func TestRefreshRotateRejectsNonPositiveTTLBeforeStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()

	_, err := s.Save(ctx, "old-hash", "user-7", time.Hour)
	require.NoError(t, err)

	_, err = s.Rotate(ctx, "old-hash", "new-hash", 0)
	require.Error(t, err)
	assert.Equal(t, core.CodeInternal, core.CodeOf(err))

	// The aborted call must leave the store untouched: the original token
	// still rotates.
	userID, err := s.Rotate(ctx, "old-hash", "new-hash", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "user-7", userID)
}

func TestRefreshDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()

	_, err := s.Save(ctx, "hash", "user-7", time.Hour)
	require.NoError(t, err)

	existed, err := s.Delete(ctx, "hash")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete(ctx, "hash")
	require.NoError(t, err)
	assert.False(t, existed)

	existed, err = s.Delete(ctx, "never-saved")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestRefreshSaveRejectsNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRefreshStore()

	_, err := s.Save(ctx, "hash", "user-7", -time.Second)
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}
