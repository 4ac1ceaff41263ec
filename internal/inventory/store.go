package inventory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"busly/pkg/logger"

	"github.com/google/uuid"
)

// Store is the seat inventory store: the single writer of seat booking
// state. Only the booking orchestrator calls the mutating operations.
type Store interface {
	// TryHold atomically claims every seat in the set for the
	// reservation, or none of them. Returns *ConflictError when any
	// seat is unavailable.
	TryHold(ctx context.Context, busID uuid.UUID, travelDate time.Time, seatIDs []uuid.UUID, reservationID uuid.UUID) error
	// Commit transitions the reservation's held seats to booked.
	Commit(ctx context.Context, reservationID uuid.UUID) error
	// Release returns the reservation's held seats to the pool.
	// Idempotent; releasing an already-released reservation is a no-op.
	Release(ctx context.Context, reservationID uuid.UUID) error
	// StatusFor is the read path behind the seat map endpoint.
	StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error)
	// Reconcile audits ledger/inventory agreement without mutating.
	Reconcile(ctx context.Context) (*InconsistencyReport, error)
}

type store struct {
	repo    Repository
	guard   *RedisGuard
	holdTTL time.Duration
	log     *logger.Logger
}

// NewStore creates a seat inventory store. The guard may be nil; the
// durable repository alone still upholds every atomicity guarantee.
func NewStore(repo Repository, guard *RedisGuard, holdTTL time.Duration) Store {
	return &store{
		repo:    repo,
		guard:   guard,
		holdTTL: holdTTL,
		log:     logger.GetDefault(),
	}
}

func (s *store) TryHold(ctx context.Context, busID uuid.UUID, travelDate time.Time, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	// Fast path: contended holds fail on the Redis guard before the
	// database sees them. A guard error other than a conflict is not
	// fatal, the conditional update below is authoritative either way.
	if err := s.guard.TryHold(ctx, seatIDs, travelDate, reservationID, s.holdTTL); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return conflict
		}
		s.log.Warn("seat guard unavailable, falling through to database",
			slog.String("reservation_id", reservationID.String()),
			slog.Any("error", err),
		)
	}

	if err := s.repo.TryHold(ctx, busID, travelDate, seatIDs, reservationID); err != nil {
		// The durable claim failed; drop the guard keys so the seats
		// are not blocked for the rest of the TTL.
		if gerr := s.guard.Release(ctx, reservationID); gerr != nil {
			s.log.Warn("failed to release seat guard after hold failure",
				slog.String("reservation_id", reservationID.String()),
				slog.Any("error", gerr),
			)
		}
		return err
	}

	return nil
}

func (s *store) Commit(ctx context.Context, reservationID uuid.UUID) error {
	if err := s.repo.CommitHeld(ctx, reservationID); err != nil {
		return err
	}

	// Booked seats no longer need guarding; the durable rows block them.
	if err := s.guard.Release(ctx, reservationID); err != nil {
		s.log.Warn("failed to drop seat guard after commit",
			slog.String("reservation_id", reservationID.String()),
			slog.Any("error", err),
		)
	}
	return nil
}

func (s *store) Release(ctx context.Context, reservationID uuid.UUID) error {
	released, err := s.repo.ReleaseHeld(ctx, reservationID)
	if err != nil {
		return err
	}

	if err := s.guard.Release(ctx, reservationID); err != nil {
		s.log.Warn("failed to drop seat guard on release",
			slog.String("reservation_id", reservationID.String()),
			slog.Any("error", err),
		)
	}

	if released > 0 {
		s.log.Info("released held seats",
			slog.String("reservation_id", reservationID.String()),
			slog.Int("seats", released),
		)
	}
	return nil
}

func (s *store) StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error) {
	return s.repo.StatusFor(ctx, busID, travelDate)
}

func (s *store) Reconcile(ctx context.Context) (*InconsistencyReport, error) {
	return s.repo.Reconcile(ctx)
}
