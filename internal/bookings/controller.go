package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"busly/internal/payments"
	"busly/internal/shared/utils/response"
	"busly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// InitiateBooking handles POST /api/v1/bookings
func (c *Controller) InitiateBooking(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req InitiateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	checkout, err := c.service.Initiate(ctx.Request.Context(), userID, req)
	if err != nil {
		c.respondBookingError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Reservation initiated", checkout, nil)
}

// VerifyPayment handles POST /api/v1/bookings/verify-payment
func (c *Controller) VerifyPayment(ctx *gin.Context) {
	var req VerifyPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.ConfirmPayment(ctx.Request.Context(), req)
	if err != nil {
		c.respondBookingError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment verified", result, nil)
}

// HandlePaymentFailure handles POST /api/v1/bookings/payment-failure
func (c *Controller) HandlePaymentFailure(ctx *gin.Context) {
	var req PaymentFailureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.HandlePaymentFailure(ctx.Request.Context(), req); err != nil {
		c.respondBookingError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment failure recorded", nil, nil)
}

// GetReservation handles GET /api/v1/bookings/:id
func (c *Controller) GetReservation(ctx *gin.Context) {
	reservationID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid reservation ID", nil, nil)
		return
	}

	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	role, _ := ctx.Get("role")
	isAdmin := role == string(users.RoleAdmin)

	reservation, err := c.service.GetReservation(ctx.Request.Context(), reservationID, userID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Reservation not found", nil, nil)
		case errors.Is(err, ErrNotOwner):
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Access denied", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get reservation", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reservation retrieved successfully", reservation, nil)
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	bookings, err := c.service.ListUserReservations(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get bookings", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// Reconcile handles GET /api/v1/bookings/reconcile (admin)
func (c *Controller) Reconcile(ctx *gin.Context) {
	report, err := c.service.Reconcile(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Reconciliation audit failed", nil, nil)
		return
	}

	message := "Ledger and seat inventory agree"
	if !report.Clean() {
		message = "Ledger and seat inventory disagree"
	}

	response.RespondJSON(ctx, "success", http.StatusOK, message, report, nil)
}

// respondBookingError maps orchestrator errors onto HTTP statuses
func (c *Controller) respondBookingError(ctx *gin.Context, err error) {
	var validation *ValidationError
	var unavailable *SeatUnavailableError

	switch {
	case errors.As(err, &validation):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Validation failed", nil, validation.Error())
	case errors.As(err, &unavailable):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Some seats are no longer available", nil, gin.H{
			"unavailable_seats": unavailable.Seats,
		})
	case errors.Is(err, payments.ErrGatewayUnavailable):
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Payment gateway unavailable", nil, nil)
	case errors.Is(err, ErrPaymentVerificationFailed):
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Payment verification failed", nil, nil)
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrReservationNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Reservation not found", nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Booking operation failed", nil, nil)
	}
}

// currentUserID pulls the authenticated user id set by the JWT
// middleware. Responds with the error itself when missing.
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return uuid.Nil, false
	}

	str, ok := raw.(string)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Invalid user ID format", nil, nil)
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid user ID", nil, nil)
		return uuid.Nil, false
	}

	return userID, true
}
