package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"busly/internal/buses"
	"busly/internal/inventory"
	"busly/internal/payments"
	"busly/internal/shared/config"
	"busly/pkg/logger"

	"github.com/google/uuid"
)

// Event is what the orchestrator publishes for the notification
// pipeline after a state change.
type Event struct {
	Type          string    `json:"type"`
	ReservationID string    `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	BusID         string    `json:"bus_id"`
	TravelDate    string    `json:"travel_date"`
	SeatNumbers   []string  `json:"seat_numbers"`
	TotalPaise    int64     `json:"total_paise"`
	OccurredAt    time.Time `json:"occurred_at"`
}

const (
	EventInitiated = "booking.initiated"
	EventConfirmed = "booking.confirmed"
	EventReleased  = "booking.released"
	EventExpired   = "booking.expired"
)

// EventPublisher decouples the orchestrator from the notification
// transport. Publishing is best effort; a failed publish never fails
// the booking.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event Event) error
}

// SeatMapInvalidator drops cached seat maps after availability changes.
// Optional; without it stale maps age out on their TTL.
type SeatMapInvalidator interface {
	InvalidateSeatMap(ctx context.Context, busID uuid.UUID)
}

// Service is the booking orchestrator. It owns the checkout flow end
// to end: validation, pricing, the seat hold, the ledger entry, the
// payment order, and the settlement callbacks.
type Service interface {
	Initiate(ctx context.Context, userID uuid.UUID, req InitiateBookingRequest) (*CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResponse, error)
	HandlePaymentFailure(ctx context.Context, req PaymentFailureRequest) error

	GetReservation(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*ReservationResponse, error)
	ListUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) (*ReservationListResponse, error)

	// ExpireStale releases every pending reservation whose hold lapsed.
	// Returns how many were released.
	ExpireStale(ctx context.Context) (int, error)
	Reconcile(ctx context.Context) (*inventory.InconsistencyReport, error)

	SetSeatMapInvalidator(invalidator SeatMapInvalidator)
}

type service struct {
	ledger      Repository
	inv         inventory.Store
	busRepo     buses.Repository
	gateway     payments.Gateway
	publisher   EventPublisher
	invalidator SeatMapInvalidator
	cfg         config.BookingConfig
	loc         *time.Location
	log         *logger.Logger
}

// NewService wires the orchestrator. The publisher may be nil when the
// notification pipeline is disabled.
func NewService(ledger Repository, inv inventory.Store, busRepo buses.Repository, gateway payments.Gateway, publisher EventPublisher, cfg config.BookingConfig) (Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid booking timezone %q: %w", cfg.Timezone, err)
	}

	return &service{
		ledger:    ledger,
		inv:       inv,
		busRepo:   busRepo,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		loc:       loc,
		log:       logger.GetDefault(),
	}, nil
}

// SetSeatMapInvalidator wires the optional seat map cache invalidation
func (s *service) SetSeatMapInvalidator(invalidator SeatMapInvalidator) {
	s.invalidator = invalidator
}

func (s *service) invalidateSeatMap(ctx context.Context, busID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSeatMap(ctx, busID)
	}
}

func (s *service) Initiate(ctx context.Context, userID uuid.UUID, req InitiateBookingRequest) (*CheckoutResponse, error) {
	busID, err := uuid.Parse(req.BusID)
	if err != nil {
		return nil, NewValidationError("bus_id", "must be a valid uuid")
	}

	travelDate, err := inventory.ParseTravelDate(req.TravelDate)
	if err != nil {
		return nil, NewValidationError("travel_date", "must be formatted as YYYY-MM-DD")
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	bus, err := s.busRepo.GetBusByID(ctx, busID)
	if err != nil {
		if errors.Is(err, buses.ErrBusNotFound) {
			return nil, NewValidationError("bus_id", "bus not found")
		}
		return nil, fmt.Errorf("failed to load bus: %w", err)
	}

	if bus.Suspended {
		return nil, NewValidationError("bus_id", "bus is suspended")
	}

	now := time.Now().In(s.loc)
	if err := s.checkDeparture(bus, travelDate, now); err != nil {
		return nil, err
	}

	seats, err := s.busRepo.GetSeatsByIDs(ctx, busID, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load seats: %w", err)
	}
	if len(seats) != len(seatIDs) {
		return nil, NewValidationError("seat_ids", "one or more seats do not belong to this bus")
	}

	price := Price(bus.FarePaise, len(seats), bus.GSTPercent, bus.DiscountPercent)
	reservationID := uuid.New()

	if err := s.inv.TryHold(ctx, busID, travelDate, seatIDs, reservationID); err != nil {
		var conflict *inventory.ConflictError
		if errors.As(err, &conflict) {
			return nil, s.seatUnavailable(ctx, busID, conflict)
		}
		return nil, fmt.Errorf("failed to hold seats: %w", err)
	}
	s.invalidateSeatMap(ctx, busID)

	reservation := &Reservation{
		ID:            reservationID,
		UserID:        userID,
		BusID:         busID,
		TravelDate:    travelDate,
		Status:        StatusPending,
		SubtotalPaise: price.SubtotalPaise,
		GSTPaise:      price.GSTPaise,
		DiscountPaise: price.DiscountPaise,
		TotalPaise:    price.TotalPaise,
		ExpiresAt:     time.Now().Add(s.cfg.HoldTimeout),
	}
	for _, seat := range seats {
		reservation.Seats = append(reservation.Seats, ReservationSeat{
			ReservationID: reservationID,
			SeatID:        seat.ID,
			SeatNumber:    seat.SeatNumber,
			FarePaise:     bus.FarePaise,
		})
	}

	if err := s.ledger.Create(ctx, reservation); err != nil {
		s.releaseQuietly(ctx, reservationID, busID)
		return nil, fmt.Errorf("failed to record reservation: %w", err)
	}

	order, err := s.gateway.CreateOrder(ctx, price.TotalPaise, "INR", reservationID.String())
	if err != nil {
		s.abandonReservation(ctx, reservation, "payment order creation failed")
		return nil, err
	}

	paymentOrder := &PaymentOrder{
		ReservationID:  reservationID,
		GatewayOrderID: order.ID,
		AmountPaise:    order.AmountPaise,
		Currency:       order.Currency,
		Status:         OrderCreated,
	}
	if err := s.ledger.AttachPaymentOrder(ctx, paymentOrder); err != nil {
		s.abandonReservation(ctx, reservation, "payment order persistence failed")
		return nil, fmt.Errorf("failed to record payment order: %w", err)
	}

	s.publish(ctx, EventInitiated, reservation)

	s.log.InfoWithContext(ctx, "Reservation initiated", map[string]interface{}{
		"reservation_id": reservationID.String(),
		"bus_id":         busID.String(),
		"travel_date":    req.TravelDate,
		"seats":          len(seats),
		"total_paise":    price.TotalPaise,
	})

	bookedSeats := make([]BookedSeatInfo, 0, len(reservation.Seats))
	for _, seat := range reservation.Seats {
		bookedSeats = append(bookedSeats, BookedSeatInfo{
			SeatID:     seat.SeatID.String(),
			SeatNumber: seat.SeatNumber,
			FarePaise:  seat.FarePaise,
		})
	}

	return &CheckoutResponse{
		ReservationID:   reservationID.String(),
		RazorpayOrderID: order.ID,
		RazorpayKeyID:   s.gateway.KeyID(),
		AmountPaise:     order.AmountPaise,
		Currency:        order.Currency,
		Price:           price,
		ExpiresAt:       reservation.ExpiresAt,
		Bookings:        bookedSeats,
	}, nil
}

func (s *service) ConfirmPayment(ctx context.Context, req VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	reservation, err := s.ledger.GetByGatewayOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}

	// Duplicate and late callbacks land here once the reservation has
	// settled. They are answered with the settled state, not an error.
	if reservation.Status.IsTerminal() {
		return &VerifyPaymentResponse{
			IsPaid:        reservation.IsConfirmed(),
			ReservationID: reservation.ID.String(),
			Status:        reservation.Status.String(),
		}, nil
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.log.ErrorWithContext(ctx, "Payment signature verification failed", ErrPaymentVerificationFailed, map[string]interface{}{
			"reservation_id": reservation.ID.String(),
			"order_id":       req.RazorpayOrderID,
		})
		s.releaseWithOrder(ctx, reservation, OrderFailed, "signature verification failed")
		return nil, ErrPaymentVerificationFailed
	}

	// The ledger transition goes first: once the row is CONFIRMED the
	// expiry sweep can no longer release it, so the commit below never
	// races with a concurrent release.
	confirmed, err := s.ledger.MarkConfirmed(ctx, reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm reservation: %w", err)
	}
	if !confirmed {
		current, err := s.ledger.GetByID(ctx, reservation.ID)
		if err != nil {
			return nil, err
		}
		return &VerifyPaymentResponse{
			IsPaid:        current.IsConfirmed(),
			ReservationID: current.ID.String(),
			Status:        current.Status.String(),
		}, nil
	}

	if err := s.inv.Commit(ctx, reservation.ID); err != nil {
		// The ledger says CONFIRMED but the seats did not all flip to
		// booked. Surface loudly; the reconcile audit will show it.
		s.log.ErrorWithContext(ctx, "FATAL: ledger confirmed but seat commit failed", err, map[string]interface{}{
			"reservation_id": reservation.ID.String(),
			"order_id":       req.RazorpayOrderID,
		})
		return nil, fmt.Errorf("seat commit failed for confirmed reservation %s: %w", reservation.ID, err)
	}

	if err := s.ledger.UpdateOrder(ctx, req.RazorpayOrderID, OrderPaid, req.RazorpayPaymentID, ""); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to mark payment order paid", err, map[string]interface{}{
			"order_id": req.RazorpayOrderID,
		})
	}

	s.publish(ctx, EventConfirmed, reservation)

	s.log.LogBookingCreated(ctx, reservation.ID.String(), reservation.BusID.String(), reservation.UserID.String())

	return &VerifyPaymentResponse{
		IsPaid:        true,
		ReservationID: reservation.ID.String(),
		Status:        StatusConfirmed.String(),
	}, nil
}

func (s *service) HandlePaymentFailure(ctx context.Context, req PaymentFailureRequest) error {
	reservation, err := s.ledger.GetByGatewayOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return err
	}

	// Duplicate failure callbacks after settlement are no-ops
	if reservation.Status.IsTerminal() {
		return nil
	}

	orderStatus := OrderFailed
	if req.PaymentStatus == "cancelled" {
		orderStatus = OrderCancelled
	}

	released, err := s.ledger.MarkReleased(ctx, reservation.ID)
	if err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	if !released {
		return nil
	}

	if err := s.inv.Release(ctx, reservation.ID); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to release held seats", err, map[string]interface{}{
			"reservation_id": reservation.ID.String(),
		})
	}
	s.invalidateSeatMap(ctx, reservation.BusID)

	if err := s.ledger.UpdateOrder(ctx, req.RazorpayOrderID, orderStatus, "", "reported by client: "+req.PaymentStatus); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to update payment order", err, map[string]interface{}{
			"order_id": req.RazorpayOrderID,
		})
	}

	s.publish(ctx, EventReleased, reservation)

	s.log.InfoWithContext(ctx, "Reservation released after payment failure", map[string]interface{}{
		"reservation_id": reservation.ID.String(),
		"payment_status": req.PaymentStatus,
	})

	return nil
}

func (s *service) GetReservation(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*ReservationResponse, error) {
	reservation, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && reservation.UserID != userID {
		return nil, ErrNotOwner
	}

	resp := reservation.ToResponse()
	return &resp, nil
}

func (s *service) ListUserReservations(ctx context.Context, userID uuid.UUID, limit, offset int) (*ReservationListResponse, error) {
	reservations, totalCount, err := s.ledger.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToResponse())
	}

	return &ReservationListResponse{
		Bookings:   responses,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

func (s *service) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.ledger.ListStalePending(ctx, time.Now(), 100)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale reservations: %w", err)
	}

	released := 0
	for i := range stale {
		reservation := &stale[i]

		// Conditional on PENDING: a payment that lands between the
		// listing and this update wins, and the sweep skips the row.
		ok, err := s.ledger.MarkReleased(ctx, reservation.ID)
		if err != nil {
			s.log.ErrorWithContext(ctx, "Failed to expire reservation", err, map[string]interface{}{
				"reservation_id": reservation.ID.String(),
			})
			continue
		}
		if !ok {
			continue
		}

		if err := s.inv.Release(ctx, reservation.ID); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to release seats for expired reservation", err, map[string]interface{}{
				"reservation_id": reservation.ID.String(),
			})
		}
		s.invalidateSeatMap(ctx, reservation.BusID)

		if reservation.PaymentOrder != nil {
			if err := s.ledger.UpdateOrder(ctx, reservation.PaymentOrder.GatewayOrderID, OrderCancelled, "", "hold expired"); err != nil {
				s.log.ErrorWithContext(ctx, "Failed to cancel order for expired reservation", err, map[string]interface{}{
					"order_id": reservation.PaymentOrder.GatewayOrderID,
				})
			}
		}

		s.publish(ctx, EventExpired, reservation)
		released++
	}

	return released, nil
}

func (s *service) Reconcile(ctx context.Context) (*inventory.InconsistencyReport, error) {
	report, err := s.inv.Reconcile(ctx)
	if err != nil {
		return nil, err
	}

	if !report.Clean() {
		s.log.ErrorWithContext(ctx, "FATAL: ledger and seat inventory disagree", inventory.ErrInventoryCorrupt, map[string]interface{}{
			"orphaned_bookings": len(report.OrphanedBookings),
			"missing_bookings":  len(report.MissingBookings),
		})
	}

	return report, nil
}

// checkDeparture enforces the booking window: no past dates, and the
// sales cutoff before departure in the bus timezone.
func (s *service) checkDeparture(bus *buses.Bus, travelDate time.Time, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	day := time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(), 0, 0, 0, 0, s.loc)
	if day.Before(today) {
		return NewValidationError("travel_date", "travel date is in the past")
	}

	departure := time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(),
		bus.DepartureHour, bus.DepartureMinute, 0, 0, s.loc)
	if now.After(departure.Add(-s.cfg.Cutoff)) {
		return NewValidationError("travel_date", "booking for this departure is closed")
	}

	return nil
}

// seatUnavailable resolves conflicting seat ids to seat numbers so the
// client can tell the customer which picks to change.
func (s *service) seatUnavailable(ctx context.Context, busID uuid.UUID, conflict *inventory.ConflictError) error {
	unavailable := make([]UnavailableSeat, 0, len(conflict.SeatIDs))

	seats, err := s.busRepo.GetSeatsByIDs(ctx, busID, conflict.SeatIDs)
	if err != nil {
		s.log.WithError(err).Warn("failed to resolve conflicting seat numbers",
			slog.String("bus_id", busID.String()))
		for _, id := range conflict.SeatIDs {
			unavailable = append(unavailable, UnavailableSeat{SeatID: id.String()})
		}
		return &SeatUnavailableError{Seats: unavailable}
	}

	for _, seat := range seats {
		unavailable = append(unavailable, UnavailableSeat{
			SeatID:     seat.ID.String(),
			SeatNumber: seat.SeatNumber,
		})
	}
	return &SeatUnavailableError{Seats: unavailable}
}

// abandonReservation rolls a freshly created reservation back after a
// downstream failure during initiation.
func (s *service) abandonReservation(ctx context.Context, reservation *Reservation, reason string) {
	if _, err := s.ledger.MarkReleased(ctx, reservation.ID); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to release abandoned reservation", err, map[string]interface{}{
			"reservation_id": reservation.ID.String(),
			"reason":         reason,
		})
	}
	s.releaseQuietly(ctx, reservation.ID, reservation.BusID)
}

func (s *service) releaseQuietly(ctx context.Context, reservationID, busID uuid.UUID) {
	if err := s.inv.Release(ctx, reservationID); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to release held seats", err, map[string]interface{}{
			"reservation_id": reservationID.String(),
		})
	}
	s.invalidateSeatMap(ctx, busID)
}

// releaseWithOrder releases a pending reservation and records why on
// its payment order.
func (s *service) releaseWithOrder(ctx context.Context, reservation *Reservation, status OrderStatus, reason string) {
	released, err := s.ledger.MarkReleased(ctx, reservation.ID)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to release reservation", err, map[string]interface{}{
			"reservation_id": reservation.ID.String(),
		})
		return
	}
	if !released {
		return
	}

	s.releaseQuietly(ctx, reservation.ID, reservation.BusID)

	if reservation.PaymentOrder != nil {
		if err := s.ledger.UpdateOrder(ctx, reservation.PaymentOrder.GatewayOrderID, status, "", reason); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to update payment order", err, map[string]interface{}{
				"order_id": reservation.PaymentOrder.GatewayOrderID,
			})
		}
	}

	s.publish(ctx, EventReleased, reservation)
}

func (s *service) publish(ctx context.Context, eventType string, reservation *Reservation) {
	if s.publisher == nil {
		return
	}

	seatNumbers := make([]string, 0, len(reservation.Seats))
	for _, seat := range reservation.Seats {
		seatNumbers = append(seatNumbers, seat.SeatNumber)
	}

	event := Event{
		Type:          eventType,
		ReservationID: reservation.ID.String(),
		UserID:        reservation.UserID.String(),
		BusID:         reservation.BusID.String(),
		TravelDate:    inventory.FormatTravelDate(reservation.TravelDate),
		SeatNumbers:   seatNumbers,
		TotalPaise:    reservation.TotalPaise,
		OccurredAt:    time.Now(),
	}

	if err := s.publisher.PublishBookingEvent(ctx, event); err != nil {
		s.log.WithError(err).Warn("failed to publish booking event",
			slog.String("type", eventType),
			slog.String("reservation_id", reservation.ID.String()))
	}
}

func parseSeatIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, NewValidationError("seat_ids", "at least one seat is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, NewValidationError("seat_ids", fmt.Sprintf("%q is not a valid seat id", value))
		}
		if _, dup := seen[id]; dup {
			return nil, NewValidationError("seat_ids", "duplicate seat ids in request")
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
