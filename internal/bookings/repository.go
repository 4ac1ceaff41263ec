package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the reservation ledger. State transitions go through
// MarkConfirmed and MarkReleased, which are conditional on the row
// still being PENDING so that racing callbacks settle on exactly one
// winner.
type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	AttachPaymentOrder(ctx context.Context, order *PaymentOrder) error

	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, int64, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Reservation, error)

	// MarkConfirmed flips PENDING to CONFIRMED. Returns false when the
	// reservation was no longer pending, without error.
	MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error)
	// MarkReleased flips PENDING to RELEASED. Same contract.
	MarkReleased(ctx context.Context, id uuid.UUID) (bool, error)

	UpdateOrder(ctx context.Context, gatewayOrderID string, status OrderStatus, paymentID, failureReason string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) AttachPaymentOrder(ctx context.Context, order *PaymentOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("PaymentOrder").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Reservation, error) {
	var order PaymentOrder
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, order.ReservationID)
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("user_id = ?", userID)

	var totalCount int64
	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var reservations []Reservation
	err := baseQuery.
		Preload("Seats").
		Preload("PaymentOrder").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error

	return reservations, totalCount, err
}

func (r *repository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Reservation, error) {
	if limit <= 0 {
		limit = 100
	}

	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("PaymentOrder").
		Where("status = ?", StatusPending).
		Where("expires_at < ?", cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&reservations).Error

	return reservations, err
}

func (r *repository) MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":       StatusConfirmed,
			"confirmed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) MarkReleased(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusReleased,
			"released_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) UpdateOrder(ctx context.Context, gatewayOrderID string, status OrderStatus, paymentID, failureReason string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": now,
		"updated_at":   now,
	}
	if paymentID != "" {
		updates["payment_id"] = paymentID
	}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}

	return r.db.WithContext(ctx).
		Model(&PaymentOrder{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(updates).Error
}
