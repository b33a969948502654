package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"factcheck/cache"
	"factcheck/metrics"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// Limiter decides whether one more request from key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// MemoryLimiter is a per-process sliding window limiter. Clients idle for a
// whole window are swept at most once per window.
type MemoryLimiter struct {
	requests  map[string][]time.Time
	mutex     sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *MemoryLimiter) Allow(ctx context.Context, key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// sweep drops keys whose newest request is outside the window.
func (rl *MemoryLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.requests {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RedisLimiter shares a fixed window across instances. When the store is
// unreachable requests are let through.
type RedisLimiter struct {
	counter *cache.WindowCounter
	limit   int
}

func NewRedisLimiter(counter *cache.WindowCounter, limit int) *RedisLimiter {
	return &RedisLimiter{counter: counter, limit: limit}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	n, err := l.counter.Hit(ctx, key)
	if err != nil {
		log.WithError(err).WithField("component", "ratelimit").Warn("rate limit store error, allowing request")
		return true
	}
	return n <= int64(l.limit)
}

// RateLimit rejects clients that exceed the limiter with 429.
func RateLimit(limiter Limiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiter.Allow(c.Request.Context(), clientIP) {
			log.WithFields(log.Fields{"component": "http", "ip": clientIP}).Warn("rate limit exceeded")
			metrics.RateLimitedTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		c.Next()
	}
}
