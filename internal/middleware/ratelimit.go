package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter is a fixed-window request counter keyed by an identifier
// (typically the client IP). It replaces a process-global counter map
// with an injectable, window-scoped one.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	counts map[string]*windowCount
}

type windowCount struct {
	start time.Time
	n     int
}

// NewLimiter creates a limiter allowing max requests per key per window.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		counts: make(map[string]*windowCount),
	}
}

// Allow records one request for key and reports whether it is within the
// window's budget. Stale windows are reset on access.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	wc, ok := l.counts[key]
	if !ok || now.Sub(wc.start) >= l.window {
		l.counts[key] = &windowCount{start: now, n: 1}
		l.prune(now)
		return true
	}

	wc.n++
	return wc.n <= l.max
}

// prune drops expired windows so the map does not grow with dead keys.
// Called with the lock held.
func (l *Limiter) prune(now time.Time) {
	for key, wc := range l.counts {
		if now.Sub(wc.start) >= l.window {
			delete(l.counts, key)
		}
	}
}

// RateLimit rejects requests over the per-client budget with 429.
func RateLimit(limiter *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
