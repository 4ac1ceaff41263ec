// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"busly/internal/auth"
	"busly/internal/bookings"
	"busly/internal/buses"
	"busly/internal/inventory"
	"busly/internal/payments"
	"busly/internal/shared/config"
	"busly/internal/shared/database"
	"busly/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	gateway   payments.Gateway
	publisher bookings.EventPublisher

	// Shared across route groups and with the background jobs
	inventoryStore inventory.Store
	busService     buses.Service
	bookingService bookings.Service
}

// NewRouter creates a new router instance. The publisher may be nil
// when the notification pipeline is disabled.
func NewRouter(cfg *config.Config, db *database.DB, gateway payments.Gateway, publisher bookings.EventPublisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		gateway:   gateway,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) error {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupBusRoutes(api)
		if err := r.setupBookingRoutes(api); err != nil {
			return err
		}
	}

	return nil
}

// BookingService exposes the orchestrator for the expiry job
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "busly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "busly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupBusRoutes configures bus catalog and seat map routes
func (r *Router) setupBusRoutes(rg *gin.RouterGroup) {
	guard := inventory.NewRedisGuard(r.db.GetRedisClient())
	invRepo := inventory.NewRepository(r.db.GetPostgreSQL())
	r.inventoryStore = inventory.NewStore(invRepo, guard, r.config.Booking.HoldTimeout)

	busRepo := buses.NewRepository(r.db.GetPostgreSQL())
	r.busService = buses.NewService(busRepo, r.inventoryStore)
	r.busService.SetCacheService(cache.NewService(r.db.GetRedisClient()))

	busController := buses.NewController(r.busService)
	buses.SetupBusRoutes(rg, busController)
}

// setupBookingRoutes configures the checkout and ledger routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) error {
	ledger := bookings.NewRepository(r.db.GetPostgreSQL())
	busRepo := buses.NewRepository(r.db.GetPostgreSQL())

	bookingService, err := bookings.NewService(ledger, r.inventoryStore, busRepo, r.gateway, r.publisher, r.config.Booking)
	if err != nil {
		return err
	}
	if r.busService != nil {
		bookingService.SetSeatMapInvalidator(r.busService)
	}
	r.bookingService = bookingService

	bookingController := bookings.NewController(bookingService)
	bookings.SetupBookingRoutes(rg, bookingController)

	return nil
}
