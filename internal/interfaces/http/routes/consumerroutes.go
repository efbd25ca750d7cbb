package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/homechef-inc/mealsub/internal/interfaces/http/handlers"
	"github.com/homechef-inc/mealsub/internal/interfaces/http/middleware"
)

// ConsumerRouteConfig holds dependencies for authenticated consumer routes.
type ConsumerRouteConfig struct {
	CheckoutHandler *handlers.CheckoutHandler
	GroupHandler    *handlers.GroupHandler
	OrderHandler    *handlers.OrderHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter
}

// SetupConsumerRoutes configures checkout, lifecycle and order routes.
// Previews and reads are not rate limited; state changes are.
func SetupConsumerRoutes(engine *gin.Engine, cfg *ConsumerRouteConfig) {
	api := engine.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	limited := cfg.RateLimiter.Limit()

	api.POST("/checkout", limited, cfg.CheckoutHandler.Checkout)

	groups := api.Group("/groups")
	{
		groups.GET("/:id", cfg.GroupHandler.Get)
		groups.GET("/:id/credits", cfg.GroupHandler.ListCredits)

		groups.POST("/:id/pause/preview", cfg.GroupHandler.PreviewPause)
		groups.POST("/:id/pause", limited, cfg.GroupHandler.ConfirmPause)

		groups.POST("/:id/resume/preview", cfg.GroupHandler.PreviewResume)
		groups.POST("/:id/resume", limited, cfg.GroupHandler.ConfirmResume)

		groups.POST("/:id/cancel/preview", cfg.GroupHandler.PreviewCancel)
		groups.POST("/:id/cancel", limited, cfg.GroupHandler.ConfirmCancel)
	}

	orders := api.Group("/orders")
	{
		orders.POST("/:id/skip", limited, cfg.OrderHandler.Skip)
	}
}
