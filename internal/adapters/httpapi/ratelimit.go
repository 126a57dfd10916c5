package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterJanitorInterval = 5 * time.Minute
	limiterIdleTTL         = time.Hour
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters hands out one token bucket per client IP.
type clientLimiters struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

func newClientLimiters(rps float64, burst int, now func() time.Time) *clientLimiters {
	if now == nil {
		now = time.Now
	}
	return &clientLimiters{
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      now,
		limiters: map[string]*limiterEntry{},
	}
}

func (l *clientLimiters) allow(identity string) bool {
	l.mu.Lock()
	now := l.now()
	entry, ok := l.limiters[identity]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[identity] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// evictIdle drops limiters not seen since before cutoff and reports how many
// remain.
func (l *clientLimiters) evictIdle(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	for identity, entry := range l.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(l.limiters, identity)
		}
	}
	return len(l.limiters)
}

func (l *clientLimiters) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(limiterJanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle(l.now().Add(-limiterIdleTTL))
		}
	}
}

func rateLimit(limiters *clientLimiters) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			abortWithError(c, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded, please slow down")
			return
		}

		c.Next()
	}
}
