package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one line per request once the handler chain has run.
// By that point authentication has stored the caller's identity in the gin
// context, so the line carries community and username when they are known.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}
		if community := GetCommunity(c); community != "" {
			attrs = append(attrs, "community", community)
		}
		if username := GetUsername(c); username != "" {
			attrs = append(attrs, "username", username)
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}

		switch {
		case status >= 500:
			slog.Error("request served", attrs...)
		case status >= 400:
			slog.Warn("request served", attrs...)
		default:
			slog.Info("request served", attrs...)
		}
	}
}
