package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/homechef-inc/mealsub/internal/interfaces/http/handlers"
	"github.com/homechef-inc/mealsub/internal/interfaces/http/middleware"
)

// AdminRouteConfig holds dependencies for admin-only routes.
type AdminRouteConfig struct {
	AdminHandler   *handlers.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupAdminRoutes configures admin-only routes.
func SetupAdminRoutes(engine *gin.Engine, cfg *AdminRouteConfig) {
	admin := engine.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	{
		admin.POST("/renewals/run", cfg.AdminHandler.RunRenewals)
		admin.PUT("/settings", cfg.AdminHandler.UpdateSettings)
	}

	vendors := admin.Group("/vendors")
	{
		vendors.POST("/:id/holidays", cfg.AdminHandler.AddVendorHoliday)
		vendors.PUT("/:id/capacity", cfg.AdminHandler.SetSlotCapacity)
	}
}
