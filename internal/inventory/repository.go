package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the durable half of the seat inventory store. Every
// mutation commits before returning; atomicity comes from conditional
// updates with a status-equality precondition, not from in-process locks,
// so multiple orchestrator processes can share one database safely.
type Repository interface {
	TryHold(ctx context.Context, busID uuid.UUID, travelDate time.Time, seatIDs []uuid.UUID, reservationID uuid.UUID) error
	CommitHeld(ctx context.Context, reservationID uuid.UUID) error
	ReleaseHeld(ctx context.Context, reservationID uuid.UUID) (int, error)
	StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error)
	SeatsHeldBy(ctx context.Context, reservationID uuid.UUID) ([]SeatInventory, error)
	Reconcile(ctx context.Context) (*InconsistencyReport, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// TryHold atomically claims every requested seat for the reservation. The
// whole set is claimed in one conditional UPDATE inside a transaction; if
// any seat is not AVAILABLE the transaction rolls back and a ConflictError
// lists the seats that blocked it.
func (r *repository) TryHold(ctx context.Context, busID uuid.UUID, travelDate time.Time, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Inventory rows are created lazily per travel date. The unique
		// (seat_id, travel_date) index makes concurrent inserts collapse
		// into a single row.
		rows := make([]SeatInventory, 0, len(seatIDs))
		for _, seatID := range seatIDs {
			rows = append(rows, SeatInventory{
				BusID:      busID,
				SeatID:     seatID,
				TravelDate: travelDate,
				Status:     StatusAvailable,
			})
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to ensure inventory rows: %w", err)
		}

		// All-or-nothing claim: the status precondition means two
		// concurrent holds can never both take the same seat.
		res := tx.Model(&SeatInventory{}).
			Where("travel_date = ? AND seat_id IN ? AND status = ?", travelDate, seatIDs, StatusAvailable).
			Updates(map[string]interface{}{
				"status":         StatusHeld,
				"reservation_id": reservationID,
				"updated_at":     time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to hold seats: %w", res.Error)
		}

		if res.RowsAffected != int64(len(seatIDs)) {
			var blocked []SeatInventory
			err := tx.
				Where("travel_date = ? AND seat_id IN ?", travelDate, seatIDs).
				Where("status <> ? OR reservation_id IS NULL OR reservation_id <> ?", StatusHeld, reservationID).
				Find(&blocked).Error
			if err != nil {
				return fmt.Errorf("failed to identify conflicting seats: %w", err)
			}

			conflict := &ConflictError{}
			for _, row := range blocked {
				conflict.SeatIDs = append(conflict.SeatIDs, row.SeatID)
			}
			// Returning an error rolls the transaction back, so the
			// partial claim above never becomes visible.
			return conflict
		}

		return nil
	})
}

// CommitHeld transitions every seat held by the reservation to BOOKED.
// Finding any of the reservation's seats in a state other than HELD (or,
// after this update, BOOKED) means the ledger and the inventory disagree;
// that is surfaced as ErrInventoryCorrupt, never repaired silently.
func (r *repository) CommitHeld(ctx context.Context, reservationID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&SeatInventory{}).
			Where("reservation_id = ? AND status = ?", reservationID, StatusHeld).
			Updates(map[string]interface{}{
				"status":     StatusBooked,
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to commit held seats: %w", res.Error)
		}

		var owned []SeatInventory
		if err := tx.Where("reservation_id = ?", reservationID).Find(&owned).Error; err != nil {
			return fmt.Errorf("failed to verify committed seats: %w", err)
		}

		if len(owned) == 0 {
			return fmt.Errorf("%w: reservation %s holds no seats", ErrInventoryCorrupt, reservationID)
		}
		for _, row := range owned {
			if row.Status != StatusBooked {
				return fmt.Errorf("%w: seat %s is %s, expected %s",
					ErrInventoryCorrupt, row.SeatID, row.Status, StatusBooked)
			}
		}

		return nil
	})
}

// ReleaseHeld returns every seat held by the reservation to AVAILABLE.
// Idempotent: zero affected rows is a successful no-op, and BOOKED seats
// are never touched, so a late release after confirmation cannot free a
// sold seat.
func (r *repository) ReleaseHeld(ctx context.Context, reservationID uuid.UUID) (int, error) {
	res := r.db.WithContext(ctx).Model(&SeatInventory{}).
		Where("reservation_id = ? AND status = ?", reservationID, StatusHeld).
		Updates(map[string]interface{}{
			"status":         StatusAvailable,
			"reservation_id": nil,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to release held seats: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// StatusFor returns the status of every tracked seat of the bus for the
// travel date. Seats without a row are AVAILABLE and are omitted.
func (r *repository) StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error) {
	var rows []SeatInventory
	err := r.db.WithContext(ctx).
		Where("bus_id = ? AND travel_date = ?", busID, travelDate).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load seat statuses: %w", err)
	}

	statuses := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		statuses[row.SeatID] = row.Status
	}
	return statuses, nil
}

// SeatsHeldBy returns the inventory rows currently tagged to the reservation
func (r *repository) SeatsHeldBy(ctx context.Context, reservationID uuid.UUID) ([]SeatInventory, error) {
	var rows []SeatInventory
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation seats: %w", err)
	}
	return rows, nil
}

// Reconcile runs the read-only audit for ledger/inventory disagreement.
// It never mutates anything; findings are for operator review.
func (r *repository) Reconcile(ctx context.Context) (*InconsistencyReport, error) {
	report := &InconsistencyReport{CheckedAt: time.Now().UTC()}

	err := r.db.WithContext(ctx).Raw(`
		SELECT si.seat_id, si.travel_date, si.reservation_id
		FROM seat_inventory si
		LEFT JOIN reservations r ON r.id = si.reservation_id
		WHERE si.status = ?
		  AND (r.id IS NULL OR r.status <> ?)
	`, StatusBooked, "CONFIRMED").Scan(&report.OrphanedBookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan for orphaned bookings: %w", err)
	}

	err = r.db.WithContext(ctx).Raw(`
		SELECT r.id AS reservation_id, rs.seat_id, r.travel_date
		FROM reservations r
		JOIN reservation_seats rs ON rs.reservation_id = r.id
		LEFT JOIN seat_inventory si
		  ON si.seat_id = rs.seat_id
		 AND si.travel_date = r.travel_date
		 AND si.status = ?
		 AND si.reservation_id = r.id
		WHERE r.status = ?
		  AND si.id IS NULL
	`, StatusBooked, "CONFIRMED").Scan(&report.MissingBookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan for missing bookings: %w", err)
	}

	return report, nil
}
