package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// requestCounter tracks how many requests each client made in the current
// window. Counts reset wholesale when the window rolls over, which is coarse
// but plenty for a community portal.
type requestCounter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart time.Time
	limit       int
	window      time.Duration
}

// take records one request for key and reports whether it fits the limit.
func (rc *requestCounter) take(key string) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := time.Now()
	if now.Sub(rc.windowStart) >= rc.window {
		rc.counts = make(map[string]int)
		rc.windowStart = now
	}

	if rc.counts[key] >= rc.limit {
		return false
	}
	rc.counts[key]++
	return true
}

// RateLimit caps each client at limit requests per window. It runs before
// authentication, so clients are keyed by IP rather than by username.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	counter := &requestCounter{
		counts:      make(map[string]int),
		windowStart: time.Now(),
		limit:       limit,
		window:      window,
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !counter.take(ip) {
			slog.Warn("request rejected by rate limit",
				"client_ip", ip,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
