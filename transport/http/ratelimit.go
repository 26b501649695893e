package http

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/todaybook/gateway/core"
)

// RateLimit throttles the auth endpoints per client IP. Login and refresh
// are the cheapest brute-force surface of the gateway; everything else is
// rate limited by upstream policy, not here.
func RateLimit(requestsPerMinute int, logger *zap.Logger) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	limiters := &clientLimiters{
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burst,
		idleFor: 5 * time.Minute,
		entries: make(map[string]*limiterEntry),
	}

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			respondError(c, logger, core.NewError(core.CodeRateLimitExceeded, "too many requests", nil))
			return
		}
		c.Next()
	}
}

type clientLimiters struct {
	limit   rate.Limit
	burst   int
	idleFor time.Duration

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (l *clientLimiters) allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
		l.evictIdle(now)
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// evictIdle drops limiters for clients not seen recently. Called with the
// lock held, only when a new client shows up.
func (l *clientLimiters) evictIdle(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.idleFor {
			delete(l.entries, key)
		}
	}
}
