package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"busly/internal/buses"
	"busly/internal/inventory"
	"busly/internal/payments"
	"busly/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger is an in-memory Repository with the same conditional
// transition semantics as the real one.
type fakeLedger struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*Reservation
	orders       map[string]*PaymentOrder
	confirmCount int
	releaseCount int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		reservations: make(map[uuid.UUID]*Reservation),
		orders:       make(map[string]*PaymentOrder),
	}
}

func (l *fakeLedger) Create(ctx context.Context, reservation *Reservation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *reservation
	l.reservations[reservation.ID] = &cp
	return nil
}

func (l *fakeLedger) AttachPaymentOrder(ctx context.Context, order *PaymentOrder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *order
	l.orders[order.GatewayOrderID] = &cp
	if r, ok := l.reservations[order.ReservationID]; ok {
		r.PaymentOrder = &cp
	}
	return nil
}

func (l *fakeLedger) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

func (l *fakeLedger) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Reservation, error) {
	l.mu.Lock()
	order, ok := l.orders[gatewayOrderID]
	l.mu.Unlock()
	if !ok {
		return nil, ErrOrderNotFound
	}
	return l.GetByID(ctx, order.ReservationID)
}

func (l *fakeLedger) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Reservation, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Reservation
	for _, r := range l.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (l *fakeLedger) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Reservation
	for _, r := range l.reservations {
		if r.Status == StatusPending && r.ExpiresAt.Before(cutoff) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (l *fakeLedger) MarkConfirmed(ctx context.Context, id uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[id]
	if !ok || r.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &now
	l.confirmCount++
	return true, nil
}

func (l *fakeLedger) MarkReleased(ctx context.Context, id uuid.UUID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[id]
	if !ok || r.Status != StatusPending {
		return false, nil
	}
	now := time.Now()
	r.Status = StatusReleased
	r.ReleasedAt = &now
	l.releaseCount++
	return true, nil
}

func (l *fakeLedger) UpdateOrder(ctx context.Context, gatewayOrderID string, status OrderStatus, paymentID, failureReason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[gatewayOrderID]
	if !ok {
		return ErrOrderNotFound
	}
	order.Status = status
	order.PaymentID = paymentID
	order.FailureReason = failureReason
	return nil
}

// fakeInventory enforces all-or-nothing holds under a single lock, the
// property the real store gets from its conditional UPDATE.
type fakeInventory struct {
	mu     sync.Mutex
	owners map[string]uuid.UUID // seatID|date -> reservation
	held   map[uuid.UUID][]string
	booked map[uuid.UUID][]string
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		owners: make(map[string]uuid.UUID),
		held:   make(map[uuid.UUID][]string),
		booked: make(map[uuid.UUID][]string),
	}
}

func seatKey(seatID uuid.UUID, travelDate time.Time) string {
	return seatID.String() + "|" + inventory.FormatTravelDate(travelDate)
}

func (f *fakeInventory) TryHold(ctx context.Context, busID uuid.UUID, travelDate time.Time, seatIDs []uuid.UUID, reservationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var taken []uuid.UUID
	for _, id := range seatIDs {
		if _, ok := f.owners[seatKey(id, travelDate)]; ok {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return &inventory.ConflictError{SeatIDs: taken}
	}

	for _, id := range seatIDs {
		key := seatKey(id, travelDate)
		f.owners[key] = reservationID
		f.held[reservationID] = append(f.held[reservationID], key)
	}
	return nil
}

func (f *fakeInventory) Commit(ctx context.Context, reservationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys, ok := f.held[reservationID]
	if !ok {
		return fmt.Errorf("no held seats for reservation %s", reservationID)
	}
	delete(f.held, reservationID)
	f.booked[reservationID] = keys
	return nil
}

func (f *fakeInventory) Release(ctx context.Context, reservationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range f.held[reservationID] {
		delete(f.owners, key)
	}
	delete(f.held, reservationID)
	return nil
}

func (f *fakeInventory) StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error) {
	return map[uuid.UUID]string{}, nil
}

func (f *fakeInventory) Reconcile(ctx context.Context) (*inventory.InconsistencyReport, error) {
	return &inventory.InconsistencyReport{CheckedAt: time.Now()}, nil
}

func (f *fakeInventory) heldCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.held)
}

type fakeBusRepo struct {
	bus   *buses.Bus
	seats []buses.Seat
}

func (r *fakeBusRepo) CreateBus(ctx context.Context, bus *buses.Bus) error { return nil }

func (r *fakeBusRepo) GetBusByID(ctx context.Context, id uuid.UUID) (*buses.Bus, error) {
	if r.bus == nil || r.bus.ID != id {
		return nil, buses.ErrBusNotFound
	}
	return r.bus, nil
}

func (r *fakeBusRepo) GetBusWithSeats(ctx context.Context, id uuid.UUID) (*buses.Bus, error) {
	return r.GetBusByID(ctx, id)
}

func (r *fakeBusRepo) ListBuses(ctx context.Context) ([]buses.Bus, error) {
	return []buses.Bus{*r.bus}, nil
}

func (r *fakeBusRepo) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool, reason string) error {
	return nil
}

func (r *fakeBusRepo) GetSeatsByIDs(ctx context.Context, busID uuid.UUID, seatIDs []uuid.UUID) ([]buses.Seat, error) {
	var out []buses.Seat
	for _, want := range seatIDs {
		for _, seat := range r.seats {
			if seat.ID == want && seat.BusID == busID {
				out = append(out, seat)
			}
		}
	}
	return out, nil
}

type countingInvalidator struct {
	calls atomic.Int64
}

func (i *countingInvalidator) InvalidateSeatMap(ctx context.Context, busID uuid.UUID) {
	i.calls.Add(1)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) PublishBookingEvent(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type bookingFixture struct {
	service     Service
	ledger      *fakeLedger
	inv         *fakeInventory
	gateway     *payments.MockGateway
	publisher   *capturePublisher
	invalidator *countingInvalidator
	bus         *buses.Bus
	seats       []buses.Seat
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	busID := uuid.New()
	bus := &buses.Bus{
		ID:              busID,
		Number:          "MH-12-TEST",
		Name:            "Shivneri Express",
		Origin:          "Mumbai",
		Destination:     "Pune",
		DepartureHour:   23,
		DepartureMinute: 30,
		FarePaise:       50000,
		GSTPercent:      5,
		DiscountPercent: 10,
	}
	seats := []buses.Seat{
		{ID: uuid.New(), BusID: busID, SeatNumber: "A1"},
		{ID: uuid.New(), BusID: busID, SeatNumber: "A2"},
		{ID: uuid.New(), BusID: busID, SeatNumber: "A3"},
	}

	ledger := newFakeLedger()
	inv := newFakeInventory()
	gateway := payments.NewMockGateway()
	publisher := &capturePublisher{}

	cfg := config.BookingConfig{
		HoldTimeout:   12 * time.Minute,
		SweepInterval: time.Minute,
		Cutoff:        time.Hour,
		Timezone:      "Asia/Kolkata",
	}

	svc, err := NewService(ledger, inv, &fakeBusRepo{bus: bus, seats: seats}, gateway, publisher, cfg)
	require.NoError(t, err)

	invalidator := &countingInvalidator{}
	svc.SetSeatMapInvalidator(invalidator)

	return &bookingFixture{
		service:     svc,
		ledger:      ledger,
		inv:         inv,
		gateway:     gateway,
		publisher:   publisher,
		invalidator: invalidator,
		bus:         bus,
		seats:       seats,
	}
}

func (f *bookingFixture) travelDate() string {
	return time.Now().AddDate(0, 0, 3).Format(inventory.TravelDateLayout)
}

func (f *bookingFixture) initiate(t *testing.T, userID uuid.UUID, seatIdx ...int) *CheckoutResponse {
	t.Helper()
	seatIDs := make([]string, 0, len(seatIdx))
	for _, i := range seatIdx {
		seatIDs = append(seatIDs, f.seats[i].ID.String())
	}
	resp, err := f.service.Initiate(context.Background(), userID, InitiateBookingRequest{
		BusID:      f.bus.ID.String(),
		TravelDate: f.travelDate(),
		SeatIDs:    seatIDs,
	})
	require.NoError(t, err)
	return resp
}

func TestInitiateBooking(t *testing.T) {
	f := newBookingFixture(t)
	userID := uuid.New()

	resp := f.initiate(t, userID, 0, 1)

	assert.NotEmpty(t, resp.ReservationID)
	assert.NotEmpty(t, resp.RazorpayOrderID)
	assert.Equal(t, "rzp_test_mock", resp.RazorpayKeyID)
	assert.Equal(t, int64(95000), resp.AmountPaise)
	assert.Equal(t, "INR", resp.Currency)
	assert.Len(t, resp.Bookings, 2)

	reservation, err := f.ledger.GetByID(context.Background(), uuid.MustParse(resp.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, reservation.Status)
	assert.Equal(t, int64(100000), reservation.SubtotalPaise)
	assert.Equal(t, int64(5000), reservation.GSTPaise)
	assert.Equal(t, int64(10000), reservation.DiscountPaise)

	assert.Equal(t, []string{EventInitiated}, f.publisher.types())
	assert.Equal(t, int64(1), f.invalidator.calls.Load(), "seat map cache dropped after the hold")
}

func TestInitiateRejectsHeldSeats(t *testing.T) {
	f := newBookingFixture(t)

	f.initiate(t, uuid.New(), 0) // A1 held by customer 1

	_, err := f.service.Initiate(context.Background(), uuid.New(), InitiateBookingRequest{
		BusID:      f.bus.ID.String(),
		TravelDate: f.travelDate(),
		SeatIDs:    []string{f.seats[0].ID.String(), f.seats[1].ID.String()},
	})

	var unavailable *SeatUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Len(t, unavailable.Seats, 1)
	assert.Equal(t, "A1", unavailable.Seats[0].SeatNumber)

	// A2 was part of the rejected request; it must still be free
	f.initiate(t, uuid.New(), 1)
}

func TestInitiateConcurrentOverlap(t *testing.T) {
	f := newBookingFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.Initiate(context.Background(), uuid.New(), InitiateBookingRequest{
				BusID:      f.bus.ID.String(),
				TravelDate: f.travelDate(),
				SeatIDs:    []string{f.seats[0].ID.String()},
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var unavailable *SeatUnavailableError
		assert.ErrorAs(t, err, &unavailable)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.inv.heldCount())
}

func TestInitiateValidation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name string
		req  InitiateBookingRequest
	}{
		{
			name: "bad bus id",
			req:  InitiateBookingRequest{BusID: "not-a-uuid", TravelDate: f.travelDate(), SeatIDs: []string{f.seats[0].ID.String()}},
		},
		{
			name: "bad travel date",
			req:  InitiateBookingRequest{BusID: f.bus.ID.String(), TravelDate: "31-12-2026", SeatIDs: []string{f.seats[0].ID.String()}},
		},
		{
			name: "past travel date",
			req:  InitiateBookingRequest{BusID: f.bus.ID.String(), TravelDate: "2020-01-01", SeatIDs: []string{f.seats[0].ID.String()}},
		},
		{
			name: "duplicate seat ids",
			req:  InitiateBookingRequest{BusID: f.bus.ID.String(), TravelDate: f.travelDate(), SeatIDs: []string{f.seats[0].ID.String(), f.seats[0].ID.String()}},
		},
		{
			name: "seat from another bus",
			req:  InitiateBookingRequest{BusID: f.bus.ID.String(), TravelDate: f.travelDate(), SeatIDs: []string{uuid.New().String()}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Initiate(ctx, userID, tt.req)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	assert.Equal(t, 0, f.inv.heldCount(), "no validation failure may leave a hold behind")
}

func TestInitiateSuspendedBus(t *testing.T) {
	f := newBookingFixture(t)
	f.bus.Suspended = true

	_, err := f.service.Initiate(context.Background(), uuid.New(), InitiateBookingRequest{
		BusID:      f.bus.ID.String(),
		TravelDate: f.travelDate(),
		SeatIDs:    []string{f.seats[0].ID.String()},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bus_id", verr.Field)
}

func TestInitiateGatewayDown(t *testing.T) {
	f := newBookingFixture(t)
	f.gateway.SetFailing(true)

	_, err := f.service.Initiate(context.Background(), uuid.New(), InitiateBookingRequest{
		BusID:      f.bus.ID.String(),
		TravelDate: f.travelDate(),
		SeatIDs:    []string{f.seats[0].ID.String()},
	})
	require.ErrorIs(t, err, payments.ErrGatewayUnavailable)
	assert.Equal(t, 0, f.inv.heldCount(), "seats must be freed when the order cannot be created")

	// The seat is bookable again once the gateway recovers
	f.gateway.SetFailing(false)
	f.initiate(t, uuid.New(), 0)
}

func TestConfirmPayment(t *testing.T) {
	f := newBookingFixture(t)
	userID := uuid.New()
	checkout := f.initiate(t, userID, 0, 1)

	resp, err := f.service.ConfirmPayment(context.Background(), VerifyPaymentRequest{
		RazorpayOrderID:   checkout.RazorpayOrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: payments.MockSignature(checkout.RazorpayOrderID, "pay_test_1"),
	})
	require.NoError(t, err)
	assert.True(t, resp.IsPaid)
	assert.Equal(t, "CONFIRMED", resp.Status)

	reservation, err := f.ledger.GetByID(context.Background(), uuid.MustParse(checkout.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, reservation.Status)
	assert.NotNil(t, reservation.ConfirmedAt)
	assert.Equal(t, OrderPaid, f.ledger.orders[checkout.RazorpayOrderID].Status)
	assert.Contains(t, f.publisher.types(), EventConfirmed)

	// Duplicate callback answers with the settled state and changes nothing
	again, err := f.service.ConfirmPayment(context.Background(), VerifyPaymentRequest{
		RazorpayOrderID:   checkout.RazorpayOrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: payments.MockSignature(checkout.RazorpayOrderID, "pay_test_1"),
	})
	require.NoError(t, err)
	assert.True(t, again.IsPaid)
	assert.Equal(t, 1, f.ledger.confirmCount)
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	f := newBookingFixture(t)
	checkout := f.initiate(t, uuid.New(), 0)

	_, err := f.service.ConfirmPayment(context.Background(), VerifyPaymentRequest{
		RazorpayOrderID:   checkout.RazorpayOrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "forged",
	})
	require.ErrorIs(t, err, ErrPaymentVerificationFailed)

	reservation, err := f.ledger.GetByID(context.Background(), uuid.MustParse(checkout.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, reservation.Status)
	assert.Equal(t, OrderFailed, f.ledger.orders[checkout.RazorpayOrderID].Status)
	assert.Equal(t, 0, f.inv.heldCount())

	// The seat goes back to the pool
	f.initiate(t, uuid.New(), 0)
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.service.ConfirmPayment(context.Background(), VerifyPaymentRequest{
		RazorpayOrderID:   "order_missing",
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: "sig",
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHandlePaymentFailure(t *testing.T) {
	f := newBookingFixture(t)
	checkout := f.initiate(t, uuid.New(), 0, 1)

	req := PaymentFailureRequest{RazorpayOrderID: checkout.RazorpayOrderID, PaymentStatus: "failed"}
	require.NoError(t, f.service.HandlePaymentFailure(context.Background(), req))

	reservation, err := f.ledger.GetByID(context.Background(), uuid.MustParse(checkout.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, reservation.Status)
	assert.Equal(t, OrderFailed, f.ledger.orders[checkout.RazorpayOrderID].Status)
	assert.Equal(t, 0, f.inv.heldCount())

	invalidations := f.invalidator.calls.Load()
	assert.GreaterOrEqual(t, invalidations, int64(2), "hold and release both drop the seat map cache")

	// Duplicate callbacks must collapse to a single transition
	require.NoError(t, f.service.HandlePaymentFailure(context.Background(), req))
	require.NoError(t, f.service.HandlePaymentFailure(context.Background(), req))
	assert.Equal(t, 1, f.ledger.releaseCount)
}

func TestHandlePaymentFailureAfterConfirm(t *testing.T) {
	f := newBookingFixture(t)
	checkout := f.initiate(t, uuid.New(), 0)

	_, err := f.service.ConfirmPayment(context.Background(), VerifyPaymentRequest{
		RazorpayOrderID:   checkout.RazorpayOrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: payments.MockSignature(checkout.RazorpayOrderID, "pay_test_1"),
	})
	require.NoError(t, err)

	// A late failure callback must not unwind a paid booking
	require.NoError(t, f.service.HandlePaymentFailure(context.Background(), PaymentFailureRequest{
		RazorpayOrderID: checkout.RazorpayOrderID,
		PaymentStatus:   "failed",
	}))

	reservation, err := f.ledger.GetByID(context.Background(), uuid.MustParse(checkout.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, reservation.Status)
	assert.Equal(t, OrderPaid, f.ledger.orders[checkout.RazorpayOrderID].Status)
}

func TestExpireStale(t *testing.T) {
	f := newBookingFixture(t)

	stale := f.initiate(t, uuid.New(), 0)
	fresh := f.initiate(t, uuid.New(), 1)

	f.ledger.mu.Lock()
	f.ledger.reservations[uuid.MustParse(stale.ReservationID)].ExpiresAt = time.Now().Add(-time.Minute)
	f.ledger.mu.Unlock()

	released, err := f.service.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	staleRes, err := f.ledger.GetByID(context.Background(), uuid.MustParse(stale.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, staleRes.Status)
	assert.Equal(t, OrderCancelled, f.ledger.orders[stale.RazorpayOrderID].Status)

	freshRes, err := f.ledger.GetByID(context.Background(), uuid.MustParse(fresh.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, freshRes.Status)

	// The expired seat is free again
	f.initiate(t, uuid.New(), 0)
	assert.Contains(t, f.publisher.types(), EventExpired)
}

func TestExpireStaleSkipsConfirmed(t *testing.T) {
	f := newBookingFixture(t)
	checkout := f.initiate(t, uuid.New(), 0)

	f.ledger.mu.Lock()
	f.ledger.reservations[uuid.MustParse(checkout.ReservationID)].ExpiresAt = time.Now().Add(-time.Minute)
	f.ledger.mu.Unlock()

	_, err := f.service.ConfirmPayment(context.Background(), VerifyPaymentRequest{
		RazorpayOrderID:   checkout.RazorpayOrderID,
		RazorpayPaymentID: "pay_test_1",
		RazorpaySignature: payments.MockSignature(checkout.RazorpayOrderID, "pay_test_1"),
	})
	require.NoError(t, err)

	released, err := f.service.ExpireStale(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, released)

	reservation, err := f.ledger.GetByID(context.Background(), uuid.MustParse(checkout.ReservationID))
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, reservation.Status)
}

func TestGetReservationOwnership(t *testing.T) {
	f := newBookingFixture(t)
	owner := uuid.New()
	checkout := f.initiate(t, owner, 0)
	reservationID := uuid.MustParse(checkout.ReservationID)

	resp, err := f.service.GetReservation(context.Background(), reservationID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, checkout.ReservationID, resp.ID)

	_, err = f.service.GetReservation(context.Background(), reservationID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrNotOwner)

	// Admins can read any reservation
	_, err = f.service.GetReservation(context.Background(), reservationID, uuid.New(), true)
	assert.NoError(t, err)

	_, err = f.service.GetReservation(context.Background(), uuid.New(), owner, false)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestListUserReservations(t *testing.T) {
	f := newBookingFixture(t)
	userID := uuid.New()
	f.initiate(t, userID, 0)
	f.initiate(t, uuid.New(), 1)

	resp, err := f.service.ListUserReservations(context.Background(), userID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, f.bus.ID.String(), resp.Bookings[0].BusID)
	require.Len(t, resp.Bookings[0].Seats, 1)
	assert.Equal(t, "A1", resp.Bookings[0].Seats[0].SeatNumber)
}

func TestStatusTransitions(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusReleased.IsTerminal())

	assert.True(t, StatusPending.IsValid())
	assert.False(t, Status("PAID").IsValid())
}

func TestSeatUnavailableErrorMessage(t *testing.T) {
	err := &SeatUnavailableError{Seats: []UnavailableSeat{
		{SeatID: uuid.New().String(), SeatNumber: "A1"},
		{SeatID: uuid.New().String(), SeatNumber: "B4"},
	}}
	assert.Contains(t, err.Error(), "A1")
	assert.Contains(t, err.Error(), "B4")

	var target *SeatUnavailableError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
}
