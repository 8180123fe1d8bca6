package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter enforces a minimum interval between requests per caller,
// keyed by the X-Client-ID header with the client IP as fallback.
type RateLimiter struct {
	callers map[string]time.Time
	mu      sync.Mutex
	limit   time.Duration
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		callers: make(map[string]time.Time),
		limit:   limit,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader("X-Client-ID")
		if caller == "" {
			caller = c.ClientIP()
		}
		r.mu.Lock()
		last, exists := r.callers[caller]
		if exists && time.Since(last) < r.limit {
			r.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		r.callers[caller] = time.Now()
		r.mu.Unlock()
		c.Next()
	}
}
