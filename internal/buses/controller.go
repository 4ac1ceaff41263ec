package buses

import (
	"errors"
	"net/http"

	"busly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListBuses handles GET /api/v1/buses
func (c *Controller) ListBuses(ctx *gin.Context) {
	buses, err := c.service.ListBuses(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list buses", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Buses retrieved successfully", buses, nil)
}

// GetSeatMap handles GET /api/v1/buses/:id?travel_date=YYYY-MM-DD
func (c *Controller) GetSeatMap(ctx *gin.Context) {
	busID := ctx.Param("id")
	travelDate := ctx.Query("travel_date")

	seatMap, err := c.service.GetSeatMap(ctx.Request.Context(), busID, travelDate)
	if err != nil {
		if errors.Is(err, ErrBusNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Bus not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to load seat map", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", seatMap, nil)
}

// CreateBus handles POST /api/v1/buses (admin)
func (c *Controller) CreateBus(ctx *gin.Context) {
	var req CreateBusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	bus, err := c.service.CreateBus(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to create bus", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Bus created successfully", bus, nil)
}

// SetSuspended handles PUT /api/v1/buses/:id/suspend (admin)
func (c *Controller) SetSuspended(ctx *gin.Context) {
	var req SuspendBusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.SetSuspended(ctx.Request.Context(), ctx.Param("id"), req); err != nil {
		if errors.Is(err, ErrBusNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Bus not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Failed to update bus", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bus updated successfully", nil, nil)
}
