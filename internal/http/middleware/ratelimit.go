// Token-bucket rate limiting per caller.
//
// Buckets are keyed by the X-User-Name header when present, falling back to
// the client IP, so one noisy caller cannot starve the rest.
package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc derives the rate-limit bucket key for a request.
type KeyFunc func(c *gin.Context) string

// KeyByUserOrIP keys buckets by caller username, falling back to client IP.
func KeyByUserOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if u := c.GetHeader("X-User-Name"); u != "" {
			return "u:" + u
		}
		return "ip:" + c.ClientIP()
	}
}

// RateLimiter holds one token bucket per key.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	key   KeyFunc

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter constructs a limiter with rps tokens per second and the
// given burst size. rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int, key KeyFunc) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		key:     key,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		b = rate.NewLimiter(rl.rps, rl.burst)
		rl.buckets[key] = b
	}
	return b
}

// Handler returns the Gin middleware enforcing the limit with JSON 429
// responses.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rps <= 0 {
			c.Next()
			return
		}
		if !rl.bucket(rl.key(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"request_id": c.GetString(requestIDKey),
				"code":       "too_many_requests",
				"message":    "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
