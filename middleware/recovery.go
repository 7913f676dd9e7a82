package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into a 500 response instead of a dropped
// connection. The stack goes to the log together with the request ID that
// the response also carries, so the two can be matched up.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID := GetRequestID(c)

				slog.Error("handler panicked",
					"panic", r,
					"request_id", requestID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"community", GetCommunity(c),
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}()

		c.Next()
	}
}
