package bookings

import "time"

// CheckoutResponse is returned when a reservation is initiated. The
// client opens the Razorpay widget with these fields.
type CheckoutResponse struct {
	ReservationID   string           `json:"reservation_id"`
	RazorpayOrderID string           `json:"razorpay_order_id"`
	RazorpayKeyID   string           `json:"razorpay_key_id"`
	AmountPaise     int64            `json:"amount_paise"`
	Currency        string           `json:"currency"`
	Price           PriceBreakdown   `json:"price"`
	ExpiresAt       time.Time        `json:"expires_at"`
	Bookings        []BookedSeatInfo `json:"bookings"`
}

type BookedSeatInfo struct {
	SeatID     string `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
	FarePaise  int64  `json:"fare_paise"`
}

// VerifyPaymentResponse mirrors what the checkout client expects
type VerifyPaymentResponse struct {
	IsPaid        bool   `json:"is_paid"`
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

// ReservationResponse is the read model for booking history
type ReservationResponse struct {
	ID          string           `json:"id"`
	BusID       string           `json:"bus_id"`
	TravelDate  string           `json:"travel_date"`
	Status      string           `json:"status"`
	Price       PriceBreakdown   `json:"price"`
	Seats       []BookedSeatInfo `json:"seats"`
	OrderStatus string           `json:"order_status,omitempty"`
	ExpiresAt   time.Time        `json:"expires_at"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ReservationListResponse wraps paginated booking history
type ReservationListResponse struct {
	Bookings   []ReservationResponse `json:"bookings"`
	TotalCount int64                 `json:"total_count"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
}

func (r *Reservation) ToResponse() ReservationResponse {
	seats := make([]BookedSeatInfo, 0, len(r.Seats))
	for _, seat := range r.Seats {
		seats = append(seats, BookedSeatInfo{
			SeatID:     seat.SeatID.String(),
			SeatNumber: seat.SeatNumber,
			FarePaise:  seat.FarePaise,
		})
	}

	resp := ReservationResponse{
		ID:         r.ID.String(),
		BusID:      r.BusID.String(),
		TravelDate: r.TravelDate.Format("2006-01-02"),
		Status:     r.Status.String(),
		Price: PriceBreakdown{
			SubtotalPaise: r.SubtotalPaise,
			GSTPaise:      r.GSTPaise,
			DiscountPaise: r.DiscountPaise,
			TotalPaise:    r.TotalPaise,
		},
		Seats:     seats,
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
	if r.PaymentOrder != nil {
		resp.OrderStatus = r.PaymentOrder.Status.String()
	}
	return resp
}
