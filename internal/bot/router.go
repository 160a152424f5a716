package bot

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"nightlock/internal/metrics"
)

// WebhookPath is where Telegram delivers updates in webhook mode
const WebhookPath = "/telegram/webhook"

// RouterConfig holds dependencies for the bot router
type RouterConfig struct {
	Bot           *Bot
	WebhookSecret string
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
	// EnableWebhook registers WebhookPath. Polling mode leaves it out.
	EnableWebhook bool
}

// NewRouter creates the HTTP router serving health, metrics and the webhook
func NewRouter(config RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery(logger))
	router.Use(RequestLoggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"service": "nightlock",
		})
	})

	if config.Metrics != nil {
		router.GET("/metrics", gin.WrapH(config.Metrics.Handler()))
	}

	if config.EnableWebhook {
		webhookHandler := NewWebhookHandler(config.Bot, config.WebhookSecret, logger)
		router.POST(WebhookPath, webhookHandler.HandleWebhook)
	}

	return router
}
