package buses

import "time"

// BusResponse is a bus in list/detail responses
type BusResponse struct {
	ID               string    `json:"id"`
	Number           string    `json:"number"`
	Name             string    `json:"name"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	StartTime        ClockTime `json:"start_time"`
	FarePaise        int64     `json:"fare_paise"`
	GSTPercent       float64   `json:"gst_percent"`
	DiscountPercent  float64   `json:"discount_percent"`
	Suspended        bool      `json:"suspended"`
	SuspensionReason string    `json:"suspension_reason,omitempty"`
	TotalSeats       int       `json:"total_seats"`
}

// ClockTime is a departure time of day
type ClockTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// SeatMapResponse is a bus with its per-travel-date seat availability
type SeatMapResponse struct {
	BusResponse
	TravelDate string         `json:"travel_date,omitempty"`
	Seats      []SeatMapEntry `json:"seats"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// SeatMapEntry is one seat with its availability flag. Held seats report
// as booked so no second customer starts a checkout they will lose.
type SeatMapEntry struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seat_number"`
	IsBooked   bool   `json:"is_booked"`
}

// ToResponse converts a Bus to its response representation
func (b *Bus) ToResponse() BusResponse {
	return BusResponse{
		ID:               b.ID.String(),
		Number:           b.Number,
		Name:             b.Name,
		Origin:           b.Origin,
		Destination:      b.Destination,
		StartTime:        ClockTime{Hour: b.DepartureHour, Minute: b.DepartureMinute},
		FarePaise:        b.FarePaise,
		GSTPercent:       b.GSTPercent,
		DiscountPercent:  b.DiscountPercent,
		Suspended:        b.Suspended,
		SuspensionReason: b.SuspensionReason,
		TotalSeats:       len(b.Seats),
	}
}
