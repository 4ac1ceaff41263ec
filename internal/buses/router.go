package buses

import (
	"busly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBusRoutes configures all bus-related routes
func SetupBusRoutes(rg *gin.RouterGroup, controller *Controller) {
	busGroup := rg.Group("/buses")
	{
		// Public read path: list and per-date seat map
		busGroup.GET("", controller.ListBuses)
		busGroup.GET("/:id", controller.GetSeatMap)

		// Admin bus configuration
		admin := busGroup.Group("")
		admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
		{
			admin.POST("", controller.CreateBus)
			admin.PUT("/:id/suspend", controller.SetSuspended)
		}
	}
}
