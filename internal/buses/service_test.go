package buses

import (
	"context"
	"testing"
	"time"

	"busly/internal/inventory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBusRepo struct {
	buses map[uuid.UUID]*Bus
}

func newMemoryBusRepo() *memoryBusRepo {
	return &memoryBusRepo{buses: make(map[uuid.UUID]*Bus)}
}

func (r *memoryBusRepo) CreateBus(ctx context.Context, bus *Bus) error {
	if bus.ID == uuid.Nil {
		bus.ID = uuid.New()
	}
	for i := range bus.Seats {
		if bus.Seats[i].ID == uuid.Nil {
			bus.Seats[i].ID = uuid.New()
		}
		bus.Seats[i].BusID = bus.ID
	}
	r.buses[bus.ID] = bus
	return nil
}

func (r *memoryBusRepo) GetBusByID(ctx context.Context, id uuid.UUID) (*Bus, error) {
	bus, ok := r.buses[id]
	if !ok {
		return nil, ErrBusNotFound
	}
	return bus, nil
}

func (r *memoryBusRepo) GetBusWithSeats(ctx context.Context, id uuid.UUID) (*Bus, error) {
	return r.GetBusByID(ctx, id)
}

func (r *memoryBusRepo) ListBuses(ctx context.Context) ([]Bus, error) {
	var out []Bus
	for _, bus := range r.buses {
		out = append(out, *bus)
	}
	return out, nil
}

func (r *memoryBusRepo) SetSuspended(ctx context.Context, id uuid.UUID, suspended bool, reason string) error {
	bus, ok := r.buses[id]
	if !ok {
		return ErrBusNotFound
	}
	bus.Suspended = suspended
	bus.SuspensionReason = reason
	return nil
}

func (r *memoryBusRepo) GetSeatsByIDs(ctx context.Context, busID uuid.UUID, seatIDs []uuid.UUID) ([]Seat, error) {
	bus, ok := r.buses[busID]
	if !ok {
		return nil, ErrBusNotFound
	}
	var out []Seat
	for _, want := range seatIDs {
		for _, seat := range bus.Seats {
			if seat.ID == want {
				out = append(out, seat)
			}
		}
	}
	return out, nil
}

type staticStatusReader struct {
	statuses map[uuid.UUID]string
}

func (r *staticStatusReader) StatusFor(ctx context.Context, busID uuid.UUID, travelDate time.Time) (map[uuid.UUID]string, error) {
	return r.statuses, nil
}

func TestCreateBus(t *testing.T) {
	svc := NewService(newMemoryBusRepo(), &staticStatusReader{})

	bus, err := svc.CreateBus(context.Background(), CreateBusRequest{
		Number:          "MH-12-AB-1234",
		Name:            "Shivneri Express",
		Origin:          "Mumbai",
		Destination:     "Pune",
		DepartureHour:   7,
		DepartureMinute: 30,
		FarePaise:       45000,
		SeatNumbers:     []string{"A1", "A2", "B1"},
	})
	require.NoError(t, err)
	assert.Len(t, bus.Seats, 3)
	assert.Equal(t, float64(5), bus.GSTPercent, "gst defaults when unset")
	assert.Equal(t, float64(0), bus.DiscountPercent)
}

func TestCreateBusRejectsDuplicateSeatNumbers(t *testing.T) {
	svc := NewService(newMemoryBusRepo(), &staticStatusReader{})

	_, err := svc.CreateBus(context.Background(), CreateBusRequest{
		Number:      "MH-12-AB-1234",
		Name:        "Shivneri Express",
		Origin:      "Mumbai",
		Destination: "Pune",
		FarePaise:   45000,
		SeatNumbers: []string{"A1", "A1"},
	})
	assert.ErrorContains(t, err, "duplicate seat number")
}

func TestGetSeatMap(t *testing.T) {
	repo := newMemoryBusRepo()
	reader := &staticStatusReader{statuses: map[uuid.UUID]string{}}
	svc := NewService(repo, reader)

	bus, err := svc.CreateBus(context.Background(), CreateBusRequest{
		Number:      "MH-12-AB-1234",
		Name:        "Shivneri Express",
		Origin:      "Mumbai",
		Destination: "Pune",
		FarePaise:   45000,
		SeatNumbers: []string{"A1", "A2", "A3"},
	})
	require.NoError(t, err)

	// Held and booked both present as unavailable to the customer
	reader.statuses[bus.Seats[0].ID] = inventory.StatusHeld
	reader.statuses[bus.Seats[1].ID] = inventory.StatusBooked

	resp, err := svc.GetSeatMap(context.Background(), bus.ID.String(), "2026-12-20")
	require.NoError(t, err)
	require.Len(t, resp.Seats, 3)

	booked := make(map[string]bool, len(resp.Seats))
	for _, seat := range resp.Seats {
		booked[seat.SeatNumber] = seat.IsBooked
	}
	assert.True(t, booked["A1"])
	assert.True(t, booked["A2"])
	assert.False(t, booked["A3"])
}

func TestGetSeatMapWithoutDate(t *testing.T) {
	repo := newMemoryBusRepo()
	reader := &staticStatusReader{statuses: map[uuid.UUID]string{}}
	svc := NewService(repo, reader)

	bus, err := svc.CreateBus(context.Background(), CreateBusRequest{
		Number:      "MH-12-AB-1234",
		Name:        "Shivneri Express",
		Origin:      "Mumbai",
		Destination: "Pune",
		FarePaise:   45000,
		SeatNumbers: []string{"A1"},
	})
	require.NoError(t, err)

	// No inventory lookup happens without a travel date
	reader.statuses[bus.Seats[0].ID] = inventory.StatusBooked

	resp, err := svc.GetSeatMap(context.Background(), bus.ID.String(), "")
	require.NoError(t, err)
	require.Len(t, resp.Seats, 1)
	assert.False(t, resp.Seats[0].IsBooked)
}

func TestGetSeatMapBadInput(t *testing.T) {
	svc := NewService(newMemoryBusRepo(), &staticStatusReader{})

	_, err := svc.GetSeatMap(context.Background(), "not-a-uuid", "2026-12-20")
	assert.Error(t, err)

	_, err = svc.GetSeatMap(context.Background(), uuid.New().String(), "20-12-2026")
	assert.Error(t, err)
}

func TestSetSuspended(t *testing.T) {
	repo := newMemoryBusRepo()
	svc := NewService(repo, &staticStatusReader{})

	bus, err := svc.CreateBus(context.Background(), CreateBusRequest{
		Number:      "MH-12-AB-1234",
		Name:        "Shivneri Express",
		Origin:      "Mumbai",
		Destination: "Pune",
		FarePaise:   45000,
		SeatNumbers: []string{"A1"},
	})
	require.NoError(t, err)

	err = svc.SetSuspended(context.Background(), bus.ID.String(), SuspendBusRequest{
		Suspended: true,
		Reason:    "breakdown",
	})
	require.NoError(t, err)

	got, err := svc.GetBus(context.Background(), bus.ID)
	require.NoError(t, err)
	assert.True(t, got.Suspended)
	assert.Equal(t, "breakdown", got.SuspensionReason)

	err = svc.SetSuspended(context.Background(), "not-a-uuid", SuspendBusRequest{Suspended: true})
	assert.Error(t, err)
}
