package bot

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"nightlock/internal/idgen"
)

const RequestIDKey = "X-Request-ID"

// RequestID tags each request with the caller's X-Request-ID or a fresh one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if requestID == "" {
			requestID = idgen.New()
		}
		c.Header(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)
		c.Next()
	}
}

// Recovery turns a handler panic into a logged 500
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					"component", "http",
					"request_id", c.GetString(RequestIDKey),
					"error", err,
					"path", c.Request.URL.Path,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}
