package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/todaybook/gateway/core"
	"github.com/todaybook/gateway/ports"
)

// MemoryExchangeStore is an in-memory ExchangeCodeStore, primarily for
// tests and local development. Expiry is checked lazily on access.
type MemoryExchangeStore struct {
	mu      sync.Mutex
	entries map[string]exchangeEntry
}

type exchangeEntry struct {
	payload   core.ExchangePayload
	expiresAt time.Time
}

var _ ports.ExchangeCodeStore = (*MemoryExchangeStore)(nil)

// NewMemoryExchangeStore creates an empty in-memory exchange code store.
func NewMemoryExchangeStore() *MemoryExchangeStore {
	return &MemoryExchangeStore{entries: make(map[string]exchangeEntry)}
}

// Save binds the payload to the code for the given TTL.
func (s *MemoryExchangeStore) Save(ctx context.Context, code string, payload core.ExchangePayload, ttl time.Duration) error {
	if strings.TrimSpace(code) == "" {
		return core.BadRequest("exchange code is empty")
	}
	if ttl <= 0 {
		return core.Internal("invalid exchange code ttl", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[code] = exchangeEntry{payload: payload, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Consume removes and returns the entry; the read and the delete happen
// under one lock hold, so a second concurrent consume always misses.
func (s *MemoryExchangeStore) Consume(ctx context.Context, code string) (core.ExchangePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[code]
	if !ok {
		return core.ExchangePayload{}, core.ErrNotFound
	}
	delete(s.entries, code)

	if time.Now().After(entry.expiresAt) {
		return core.ExchangePayload{}, core.ErrNotFound
	}
	return entry.payload, nil
}

// MemoryRefreshStore is an in-memory RefreshTokenStore for tests and local
// development. Rotation follows the optimistic strategy for stores without
// scripting: under one critical section it re-validates the old key before
// writing the new one, preserving the single-winner guarantee.
type MemoryRefreshStore struct {
	mu      sync.Mutex
	entries map[string]refreshEntry
}

type refreshEntry struct {
	userID    string
	expiresAt time.Time
}

var _ ports.RefreshTokenStore = (*MemoryRefreshStore)(nil)

// NewMemoryRefreshStore creates an empty in-memory refresh token store.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{entries: make(map[string]refreshEntry)}
}

// Save writes hashedToken -> userID with the given TTL.
func (s *MemoryRefreshStore) Save(ctx context.Context, hashedToken, userID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, core.Internal("invalid refresh token ttl", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hashedToken] = refreshEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Delete removes the entry, reporting whether a key actually existed.
func (s *MemoryRefreshStore) Delete(ctx context.Context, hashedToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[hashedToken]
	delete(s.entries, hashedToken)
	if !ok || time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Rotate atomically replaces oldHashed with newHashed.
func (s *MemoryRefreshStore) Rotate(ctx context.Context, oldHashed, newHashed string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", core.Internal("invalid refresh token ttl", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[oldHashed]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, oldHashed)
		return "", core.ErrNotFound
	}

	delete(s.entries, oldHashed)
	s.entries[newHashed] = refreshEntry{userID: entry.userID, expiresAt: time.Now().Add(ttl)}
	return entry.userID, nil
}

// Len reports the number of live entries; used by tests to assert that
// failed rotations leave no residue.
func (s *MemoryRefreshStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
