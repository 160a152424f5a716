package bot

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs every HTTP request. Health and metrics
// scrapes are logged at debug level.
func RequestLoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		logAttrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.String("duration", time.Since(start).String()),
			slog.String("client_ip", c.ClientIP()),
			slog.String("request_id", c.GetString(RequestIDKey)),
		}

		level := slog.LevelInfo
		switch {
		case len(c.Errors) > 0:
			logAttrs = append(logAttrs, slog.String("errors", c.Errors.String()))
			level = slog.LevelError
		case path == "/health" || path == "/metrics":
			level = slog.LevelDebug
		}

		logger.LogAttrs(c.Request.Context(), level, "HTTP request", logAttrs...)
	}
}
