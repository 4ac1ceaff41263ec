package buses

import (
	"context"
	"fmt"
	"time"

	"busly/internal/inventory"
	"busly/internal/shared/constants"
	"busly/pkg/cache"

	"github.com/google/uuid"
)

// SeatStatusReader is the read side of the seat inventory, consumed to
// render per-date availability. Defined here to avoid depending on the
// store's mutating surface.
type SeatStatusReader interface {
	StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error)
}

type Service interface {
	CreateBus(ctx context.Context, req CreateBusRequest) (*Bus, error)
	ListBuses(ctx context.Context) ([]BusResponse, error)
	GetSeatMap(ctx context.Context, busID string, travelDate string) (*SeatMapResponse, error)
	SetSuspended(ctx context.Context, busID string, req SuspendBusRequest) error
	GetBus(ctx context.Context, busID uuid.UUID) (*Bus, error)
	SeatsOfBus(ctx context.Context, busID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error)
	InvalidateSeatMap(ctx context.Context, busID uuid.UUID)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	statusReader SeatStatusReader
	cacheService cache.Service
}

func NewService(repo Repository, statusReader SeatStatusReader) Service {
	return &service{
		repo:         repo,
		statusReader: statusReader,
	}
}

// SetCacheService wires the optional Redis cache for the read paths
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateBus(ctx context.Context, req CreateBusRequest) (*Bus, error) {
	seen := make(map[string]bool, len(req.SeatNumbers))
	seats := make([]Seat, 0, len(req.SeatNumbers))
	for _, number := range req.SeatNumbers {
		if seen[number] {
			return nil, fmt.Errorf("duplicate seat number: %s", number)
		}
		seen[number] = true
		seats = append(seats, Seat{SeatNumber: number})
	}

	bus := &Bus{
		Number:          req.Number,
		Name:            req.Name,
		Origin:          req.Origin,
		Destination:     req.Destination,
		DepartureHour:   req.DepartureHour,
		DepartureMinute: req.DepartureMinute,
		FarePaise:       req.FarePaise,
		GSTPercent:      5,
		DiscountPercent: 0,
		Seats:           seats,
	}
	if req.GSTPercent != nil {
		bus.GSTPercent = *req.GSTPercent
	}
	if req.DiscountPercent != nil {
		bus.DiscountPercent = *req.DiscountPercent
	}

	if err := s.repo.CreateBus(ctx, bus); err != nil {
		return nil, fmt.Errorf("failed to create bus: %w", err)
	}

	if s.cacheService != nil {
		s.cacheService.Delete(ctx, constants.CACHE_KEY_BUS_LIST)
	}

	return bus, nil
}

func (s *service) ListBuses(ctx context.Context) ([]BusResponse, error) {
	fetch := func() ([]BusResponse, error) {
		buses, err := s.repo.ListBuses(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list buses: %w", err)
		}
		responses := make([]BusResponse, 0, len(buses))
		for i := range buses {
			responses = append(responses, buses[i].ToResponse())
		}
		return responses, nil
	}

	if s.cacheService == nil {
		return fetch()
	}

	var responses []BusResponse
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_BUS_LIST, constants.TTL_BUS_LIST,
		func() (interface{}, error) { return fetch() }, &responses)
	if err != nil {
		// Serve directly on cache trouble rather than failing the read
		return fetch()
	}
	return responses, nil
}

// GetSeatMap returns the bus and its seats with per-travel-date booking
// flags. Without a travel date every seat reports available; the client
// must pick a date before it can select seats.
func (s *service) GetSeatMap(ctx context.Context, busID string, travelDate string) (*SeatMapResponse, error) {
	busUUID, err := uuid.Parse(busID)
	if err != nil {
		return nil, fmt.Errorf("invalid bus ID: %w", err)
	}

	var date time.Time
	if travelDate != "" {
		if date, err = inventory.ParseTravelDate(travelDate); err != nil {
			return nil, err
		}

		if s.cacheService != nil {
			var cached SeatMapResponse
			key := constants.BuildSeatMapKey(busID, travelDate)
			if err := s.cacheService.Get(ctx, key, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	bus, err := s.repo.GetBusWithSeats(ctx, busUUID)
	if err != nil {
		return nil, err
	}

	statuses := map[uuid.UUID]string{}
	if travelDate != "" {
		if statuses, err = s.statusReader.StatusFor(ctx, busUUID, date); err != nil {
			return nil, err
		}
	}

	resp := &SeatMapResponse{
		BusResponse: bus.ToResponse(),
		TravelDate:  travelDate,
		FetchedAt:   time.Now().UTC(),
	}
	for _, seat := range bus.Seats {
		status := statuses[seat.ID]
		resp.Seats = append(resp.Seats, SeatMapEntry{
			ID:         seat.ID.String(),
			SeatNumber: seat.SeatNumber,
			// A held seat is presented as booked: the customer holding
			// it may still pay, so nobody else should start a checkout.
			IsBooked: status == inventory.StatusHeld || status == inventory.StatusBooked,
		})
	}

	if travelDate != "" && s.cacheService != nil {
		key := constants.BuildSeatMapKey(busID, travelDate)
		s.cacheService.Set(ctx, key, resp, constants.TTL_SEAT_MAP)
	}

	return resp, nil
}

func (s *service) SetSuspended(ctx context.Context, busID string, req SuspendBusRequest) error {
	busUUID, err := uuid.Parse(busID)
	if err != nil {
		return fmt.Errorf("invalid bus ID: %w", err)
	}

	if err := s.repo.SetSuspended(ctx, busUUID, req.Suspended, req.Reason); err != nil {
		return err
	}

	if s.cacheService != nil {
		s.cacheService.Delete(ctx, constants.CACHE_KEY_BUS_LIST)
		s.cacheService.DeletePattern(ctx, constants.SeatMapInvalidationPattern(busID))
	}
	return nil
}

func (s *service) GetBus(ctx context.Context, busID uuid.UUID) (*Bus, error) {
	return s.repo.GetBusByID(ctx, busID)
}

func (s *service) SeatsOfBus(ctx context.Context, busID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	return s.repo.GetSeatsByIDs(ctx, busID, seatIDs)
}

// InvalidateSeatMap drops every cached seat map of the bus. The booking
// orchestrator calls it after holds and releases so availability reads
// stay honest. Commits need no invalidation, held seats already render
// as booked.
func (s *service) InvalidateSeatMap(ctx context.Context, busID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	s.cacheService.DeletePattern(ctx, constants.SeatMapInvalidationPattern(busID.String()))
}
