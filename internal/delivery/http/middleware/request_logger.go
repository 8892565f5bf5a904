package middleware

import (
	"log/slog"
	"time"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured line per request once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			"request_id", response.RequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}
		if id := GetIdentity(c); id.Authenticated() {
			attrs = append(attrs, "user_id", id.UserID)
		}
		logger.Log.Log(c.Request.Context(), level, "http request", attrs...)
	}
}
