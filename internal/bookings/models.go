package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is the ledger record for one checkout attempt. It is the
// authority on what a customer asked for and what state the attempt is
// in; seat state itself lives in the seat inventory.
type Reservation struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	BusID      uuid.UUID `gorm:"type:uuid;index;not null" json:"bus_id"`
	TravelDate time.Time `gorm:"type:date;not null;index" json:"travel_date"`
	Status     Status    `gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING', 'CONFIRMED', 'RELEASED')" json:"status"`

	SubtotalPaise int64 `gorm:"not null" json:"subtotal_paise"`
	GSTPaise      int64 `gorm:"not null" json:"gst_paise"`
	DiscountPaise int64 `gorm:"not null" json:"discount_paise"`
	TotalPaise    int64 `gorm:"not null" json:"total_paise"`

	ExpiresAt   time.Time  `gorm:"not null;index" json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Seats        []ReservationSeat `json:"seats,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE;"`
	PaymentOrder *PaymentOrder     `json:"payment_order,omitempty" gorm:"foreignKey:ReservationID;constraint:OnDelete:RESTRICT;"`
}

// ReservationSeat pins one seat, with the fare it was sold at, to a
// reservation. Fares on the bus can change later; the ledger keeps the
// price the customer actually saw.
type ReservationSeat struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID uuid.UUID `gorm:"type:uuid;index;not null" json:"reservation_id"`
	SeatID        uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
	SeatNumber    string    `gorm:"not null" json:"seat_number"`
	FarePaise     int64     `gorm:"not null" json:"fare_paise"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentOrder mirrors the gateway order created for a reservation
type PaymentOrder struct {
	ID             uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReservationID  uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null" json:"reservation_id"`
	GatewayOrderID string      `gorm:"uniqueIndex;not null" json:"gateway_order_id"`
	AmountPaise    int64       `gorm:"not null" json:"amount_paise"`
	Currency       string      `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;default:'created';check:status IN ('created', 'paid', 'failed', 'cancelled')" json:"status"`
	PaymentID      string      `json:"payment_id,omitempty"`
	FailureReason  string      `json:"failure_reason,omitempty"`
	ProcessedAt    *time.Time  `json:"processed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

func (ReservationSeat) TableName() string {
	return "reservation_seats"
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

func (r *Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// IsExpired reports whether a pending reservation has outlived its hold
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == StatusPending && now.After(r.ExpiresAt)
}

// SeatIDs returns the inventory seat ids attached to the reservation
func (r *Reservation) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Seats))
	for _, seat := range r.Seats {
		ids = append(ids, seat.SeatID)
	}
	return ids
}
