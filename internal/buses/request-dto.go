package buses

// CreateBusRequest creates a bus with its full seat layout. The layout is
// fixed at creation time; seats are never added or removed afterwards.
type CreateBusRequest struct {
	Number          string   `json:"number" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Origin          string   `json:"origin" binding:"required"`
	Destination     string   `json:"destination" binding:"required"`
	DepartureHour   int      `json:"departure_hour" binding:"min=0,max=23"`
	DepartureMinute int      `json:"departure_minute" binding:"min=0,max=59"`
	FarePaise       int64    `json:"fare_paise" binding:"required,min=0"`
	GSTPercent      *float64 `json:"gst_percent,omitempty"`
	DiscountPercent *float64 `json:"discount_percent,omitempty"`
	SeatNumbers     []string `json:"seat_numbers" binding:"required,min=1"`
}

// SuspendBusRequest suspends or reinstates a bus
type SuspendBusRequest struct {
	Suspended bool   `json:"suspended"`
	Reason    string `json:"reason,omitempty"`
}
