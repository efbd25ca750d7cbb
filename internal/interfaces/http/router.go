package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homechef-inc/mealsub/internal/interfaces/http/middleware"
	"github.com/homechef-inc/mealsub/internal/interfaces/http/routes"
)

const (
	mutationRateLimit  = 30
	mutationRateWindow = time.Minute
)

// SetupRoutes configures all HTTP routes.
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.CustomLogger(c.log))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupWebhookRoutes(c.engine, &routes.WebhookRouteConfig{
		PaymentWebhookHandler: c.hdlrs.webhookHandler,
	})

	routes.SetupConsumerRoutes(c.engine, &routes.ConsumerRouteConfig{
		CheckoutHandler: c.hdlrs.checkoutHandler,
		GroupHandler:    c.hdlrs.groupHandler,
		OrderHandler:    c.hdlrs.orderHandler,
		AuthMiddleware:  c.authMiddleware,
		RateLimiter:     c.rateLimiter,
	})

	routes.SetupAdminRoutes(c.engine, &routes.AdminRouteConfig{
		AdminHandler:   c.hdlrs.adminHandler,
		AuthMiddleware: c.authMiddleware,
	})
}
