package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/egor/vicai/logging"
)

// RequestIDHeader is echoed back on every response.
const RequestIDHeader = "X-Request-ID"

// Logger writes one access line per request.
func Logger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		log.Info("http request", map[string]any{
			"id":        id,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(startTime).Milliseconds(),
			"clientIp":  c.ClientIP(),
		})
	}
}
