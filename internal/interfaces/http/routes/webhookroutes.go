package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/homechef-inc/mealsub/internal/interfaces/http/handlers"
)

// WebhookRouteConfig holds dependencies for gateway callbacks.
type WebhookRouteConfig struct {
	PaymentWebhookHandler *handlers.PaymentWebhookHandler
}

// SetupWebhookRoutes configures the payment gateway callback. The request
// is authenticated by its signature, not by a bearer token.
func SetupWebhookRoutes(engine *gin.Engine, cfg *WebhookRouteConfig) {
	webhooks := engine.Group("/webhooks")
	{
		webhooks.POST("/payments", cfg.PaymentWebhookHandler.HandlePayment)
	}
}
