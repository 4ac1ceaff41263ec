package buses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrBusNotFound = errors.New("bus not found")

type Repository interface {
	CreateBus(ctx context.Context, bus *Bus) error
	GetBusByID(ctx context.Context, id uuid.UUID) (*Bus, error)
	GetBusWithSeats(ctx context.Context, id uuid.UUID) (*Bus, error)
	ListBuses(ctx context.Context) ([]Bus, error)
	SetSuspended(ctx context.Context, id uuid.UUID, suspended bool, reason string) error
	GetSeatsByIDs(ctx context.Context, busID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBus(ctx context.Context, bus *Bus) error {
	return r.db.WithContext(ctx).Create(bus).Error
}

func (r *repository) GetBusByID(ctx context.Context, id uuid.UUID) (*Bus, error) {
	var bus Bus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	return &bus, nil
}

func (r *repository) GetBusWithSeats(ctx context.Context, id uuid.UUID) (*Bus, error) {
	var bus Bus
	err := r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_number ASC")
		}).
		Where("id = ?", id).
		First(&bus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	return &bus, nil
}

func (r *repository) ListBuses(ctx context.Context) ([]Bus, error) {
	var buses []Bus
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Order("origin ASC, destination ASC, departure_hour ASC").
		Find(&buses).Error
	return buses, err
}

func (r *repository) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool, reason string) error {
	res := r.db.WithContext(ctx).Model(&Bus{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"suspended":         suspended,
			"suspension_reason": reason,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBusNotFound
	}
	return nil
}

// GetSeatsByIDs returns the subset of the requested seats that belong to
// the bus. Callers compare lengths to detect foreign seat ids.
func (r *repository) GetSeatsByIDs(ctx context.Context, busID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("bus_id = ? AND id IN ?", busID, seatIDs).
		Find(&seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	return seats, nil
}
