package bookings

import (
	"busly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "ADMIN"))
	{
		bookings.POST("", controller.InitiateBooking)                      // POST /api/v1/bookings
		bookings.POST("/verify-payment", controller.VerifyPayment)         // POST /api/v1/bookings/verify-payment
		bookings.POST("/payment-failure", controller.HandlePaymentFailure) // POST /api/v1/bookings/payment-failure
		bookings.GET("/:id", controller.GetReservation)                    // GET /api/v1/bookings/:id
	}

	// Admin audit of ledger/inventory agreement
	admin := rg.Group("/bookings")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/reconcile", controller.Reconcile) // GET /api/v1/bookings/reconcile
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(), middleware.RequireRoles("USER", "ADMIN"))
	{
		users.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings
	}
}
