package database

import (
	"busly/internal/bookings"
	"busly/internal/buses"
	"busly/internal/inventory"
	"busly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&buses.Bus{},
		&buses.Seat{},
		&inventory.SeatInventory{},
		&bookings.Reservation{},
		&bookings.ReservationSeat{},
		&bookings.PaymentOrder{},
	)
}
