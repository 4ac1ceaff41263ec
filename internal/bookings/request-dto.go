package bookings

// InitiateBookingRequest starts a checkout for a set of seats
type InitiateBookingRequest struct {
	BusID      string   `json:"bus_id" binding:"required,uuid"`
	TravelDate string   `json:"travel_date" binding:"required"`
	SeatIDs    []string `json:"seat_ids" binding:"required,min=1,dive,uuid"`
}

// VerifyPaymentRequest carries the gateway callback after checkout
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// PaymentFailureRequest reports an abandoned or failed checkout
type PaymentFailureRequest struct {
	RazorpayOrderID string `json:"razorpay_order_id" binding:"required"`
	PaymentStatus   string `json:"payment_status" binding:"required,oneof=failed cancelled"`
}
