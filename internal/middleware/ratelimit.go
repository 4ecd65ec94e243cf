package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter applies a fixed-window per-client request limit.
type RateLimiter struct {
	limit  int
	mu     sync.Mutex
	counts map[string]int
	window time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per client per
// minute. A non-positive limit disables limiting.
func NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		counts: make(map[string]int),
		window: time.Now().Truncate(time.Minute),
	}
}

// Handler returns the gin middleware.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.limit <= 0 {
			c.Next()
			return
		}
		if !r.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limited",
				"error_description": "Too many requests.",
			})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(client string) bool {
	now := time.Now().Truncate(time.Minute)

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.After(r.window) {
		r.window = now
		r.counts = make(map[string]int)
	}

	r.counts[client]++
	return r.counts[client] <= r.limit
}
