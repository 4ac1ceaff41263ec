package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints the seat consistency model
// depends on. AutoMigrate covers the columns; the uniqueness below is
// what makes double booking impossible at the storage layer.
func MigrateConstraints(db *gorm.DB) error {
	// One inventory row per seat per travel date
	err := db.Exec(`
		ALTER TABLE seat_inventory
		ADD CONSTRAINT IF NOT EXISTS unique_seat_per_travel_date
		UNIQUE (seat_id, travel_date);
	`).Error
	if err != nil {
		return err
	}

	// Seat map reads filter on bus and date
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_seat_inventory_bus_date
		ON seat_inventory (bus_id, travel_date);
	`).Error
	if err != nil {
		return err
	}

	// Commit and release address rows by holder
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_seat_inventory_reservation
		ON seat_inventory (reservation_id) WHERE reservation_id IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	// The expiry sweep scans pending reservations by deadline
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_reservations_pending_expiry
		ON reservations (expires_at) WHERE status = 'PENDING';
	`).Error
	if err != nil {
		return err
	}

	return nil
}
