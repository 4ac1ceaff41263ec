package buses

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bus defines a bus route offering with its fare configuration
type Bus struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Number           string    `gorm:"uniqueIndex;not null" json:"number"`
	Name             string    `gorm:"not null" json:"name"`
	Origin           string    `gorm:"not null;index" json:"origin"`
	Destination      string    `gorm:"not null;index" json:"destination"`
	DepartureHour    int       `gorm:"not null;check:departure_hour >= 0 AND departure_hour <= 23" json:"-"`
	DepartureMinute  int       `gorm:"not null;check:departure_minute >= 0 AND departure_minute <= 59" json:"-"`
	FarePaise        int64     `gorm:"not null;check:fare_paise >= 0" json:"fare_paise"`
	GSTPercent       float64   `gorm:"not null;default:5" json:"gst_percent"`
	DiscountPercent  float64   `gorm:"not null;default:0" json:"discount_percent"`
	Suspended        bool      `gorm:"not null;default:false" json:"suspended"`
	SuspensionReason string    `json:"suspension_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relationships
	Seats []Seat `json:"seats,omitempty" gorm:"foreignKey:BusID;constraint:OnDelete:CASCADE;"`
}

// Seat is a physical seat of a bus. Seats are created with the bus and
// never deleted while it exists; per-date booking state lives in the
// seat inventory, not here.
type Seat struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BusID      uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_bus_seat_number" json:"bus_id"`
	SeatNumber string    `gorm:"not null;uniqueIndex:idx_bus_seat_number" json:"seat_number"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName sets the table name for Bus
func (Bus) TableName() string {
	return "buses"
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// DepartureTime renders the departure clock time, e.g. "21:30"
func (b *Bus) DepartureTime() string {
	return fmt.Sprintf("%02d:%02d", b.DepartureHour, b.DepartureMinute)
}
