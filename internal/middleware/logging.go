package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"billnudge/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that logs each request under a
// fresh X-Request-ID. Requests that fail with a server error log at error
// level.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		fields := requestFields(c, requestID, time.Since(start))
		log := logger.Named("http")
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Errorw("request failed", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}

// requestFields collects the log fields of a finished request. The route is
// the matched pattern, not the raw path. user_id appears once authentication
// has run.
func requestFields(c *gin.Context, requestID string, latency time.Duration) []interface{} {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	fields := []interface{}{
		"request_id", requestID,
		"method", c.Request.Method,
		"route", route,
		"status", c.Writer.Status(),
		"latency_ms", latency.Milliseconds(),
		"client_ip", c.ClientIP(),
	}
	if userID := c.GetString("userID"); userID != "" {
		fields = append(fields, "user_id", userID)
	}
	if len(c.Errors) > 0 {
		fields = append(fields, "errors", c.Errors.String())
	}
	return fields
}
