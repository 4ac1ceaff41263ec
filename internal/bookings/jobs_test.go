package bookings

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"busly/internal/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// sweepCounter implements Service; only ExpireStale does anything.
type sweepCounter struct {
	calls atomic.Int64
}

func (s *sweepCounter) Initiate(ctx context.Context, userID uuid.UUID, req InitiateBookingRequest) (*CheckoutResponse, error) {
	return nil, nil
}

func (s *sweepCounter) ConfirmPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	return nil, nil
}

func (s *sweepCounter) HandlePaymentFailure(ctx context.Context, req PaymentFailureRequest) error {
	return nil
}

func (s *sweepCounter) GetReservation(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*ReservationResponse, error) {
	return nil, nil
}

func (s *sweepCounter) ListUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) (*ReservationListResponse, error) {
	return nil, nil
}

func (s *sweepCounter) ExpireStale(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return 0, nil
}

func (s *sweepCounter) Reconcile(ctx context.Context) (*inventory.InconsistencyReport, error) {
	return nil, nil
}

func (s *sweepCounter) SetSeatMapInvalidator(invalidator SeatMapInvalidator) {}

func TestJobProcessorSweeps(t *testing.T) {
	svc := &sweepCounter{}
	jp := NewJobProcessor(svc, 10*time.Millisecond)

	jp.Start(context.Background())
	defer jp.Stop()

	assert.Eventually(t, func() bool {
		return svc.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestJobProcessorStopsOnContextCancel(t *testing.T) {
	svc := &sweepCounter{}
	jp := NewJobProcessor(svc, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	jp.Start(ctx)
	cancel()

	time.Sleep(30 * time.Millisecond)
	settled := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, svc.calls.Load(), "no sweeps after cancellation")
}

func TestJobProcessorDefaultInterval(t *testing.T) {
	jp := NewJobProcessor(&sweepCounter{}, 0)
	assert.Equal(t, time.Minute, jp.interval)
	close(jp.done)
}
