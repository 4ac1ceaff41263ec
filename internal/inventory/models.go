package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Seat status values for a (seat, travel date) pair. A seat is in exactly
// one of these states at any instant; rows are created lazily, an absent
// row means AVAILABLE.
const (
	StatusAvailable = "AVAILABLE"
	StatusHeld      = "HELD"
	StatusBooked    = "BOOKED"
)

// TravelDateLayout is the wire format for travel dates
const TravelDateLayout = "2006-01-02"

// SeatInventory is the durable booking state of one seat for one travel date
type SeatInventory struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BusID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"bus_id"`
	SeatID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_seat_travel_date" json:"seat_id"`
	TravelDate    time.Time  `gorm:"type:date;not null;uniqueIndex:idx_seat_travel_date" json:"travel_date"`
	Status        string     `gorm:"type:varchar(20);check:status IN ('AVAILABLE', 'HELD', 'BOOKED');default:'AVAILABLE'" json:"status"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index" json:"reservation_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName sets the table name for SeatInventory
func (SeatInventory) TableName() string {
	return "seat_inventory"
}

// ConflictError is returned by TryHold when one or more requested seats are
// not available. The hold is all-or-nothing, so no seat state was changed.
type ConflictError struct {
	SeatIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("seats unavailable: %s", strings.Join(ids, ", "))
}

// ErrInventoryCorrupt signals that inventory state disagrees with what the
// caller believes it holds. It is never auto-recovered; operators must
// reconcile.
var ErrInventoryCorrupt = errors.New("seat inventory corrupt")

// InconsistencyReport is the result of a reconciliation pass
type InconsistencyReport struct {
	// OrphanedBookings are seats marked BOOKED whose reservation is
	// missing or not CONFIRMED.
	OrphanedBookings []OrphanedBooking `json:"orphaned_bookings"`
	// MissingBookings are CONFIRMED reservations owning a seat that is
	// not marked BOOKED for them.
	MissingBookings []MissingBooking `json:"missing_bookings"`
	CheckedAt       time.Time        `json:"checked_at"`
}

// Clean reports whether the inventory and the ledger agree
func (r *InconsistencyReport) Clean() bool {
	return len(r.OrphanedBookings) == 0 && len(r.MissingBookings) == 0
}

// OrphanedBooking is a BOOKED inventory row without a confirmed reservation
type OrphanedBooking struct {
	SeatID        uuid.UUID  `json:"seat_id"`
	TravelDate    time.Time  `json:"travel_date"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
}

// MissingBooking is a confirmed reservation seat without a BOOKED inventory row
type MissingBooking struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	SeatID        uuid.UUID `json:"seat_id"`
	TravelDate    time.Time `json:"travel_date"`
}

// ParseTravelDate parses a YYYY-MM-DD travel date into a normalized UTC date
func ParseTravelDate(value string) (time.Time, error) {
	t, err := time.Parse(TravelDateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid travel date %q: %w", value, err)
	}
	return t.UTC(), nil
}

// FormatTravelDate renders a travel date in the wire format
func FormatTravelDate(t time.Time) string {
	return t.Format(TravelDateLayout)
}
