package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"busly/internal/bookings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(eventType string) bookings.Event {
	return bookings.Event{
		Type:          eventType,
		ReservationID: "8f7e6d5c-0000-0000-0000-000000000001",
		UserID:        "8f7e6d5c-0000-0000-0000-000000000002",
		BusID:         "8f7e6d5c-0000-0000-0000-000000000003",
		TravelDate:    "2026-12-20",
		SeatNumbers:   []string{"A1", "A2"},
		TotalPaise:    95000,
		OccurredAt:    time.Now(),
	}
}

func TestRenderBookingEmail(t *testing.T) {
	tests := []struct {
		eventType   string
		wantSubject string
		wantInBody  string
	}{
		{bookings.EventConfirmed, "Booking confirmed for 2026-12-20", "INR 950.00"},
		{bookings.EventExpired, "Your seat hold has expired", "back on sale"},
		{bookings.EventReleased, "Your booking was not completed", "No money was charged"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			email := RenderBookingEmail(testEvent(tt.eventType), "asha.iyer@example.in", "Asha")

			assert.Equal(t, "asha.iyer@example.in", email.RecipientEmail)
			assert.Equal(t, tt.wantSubject, email.Subject)
			assert.Contains(t, email.TextBody, tt.wantInBody)
			assert.Contains(t, email.TextBody, "A1, A2")
			assert.Contains(t, email.TextBody, "2026-12-20")
			assert.Contains(t, email.HTMLBody, "Asha")
		})
	}
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "INR 950.00", formatRupees(95000))
	assert.Equal(t, "INR 0.05", formatRupees(5))
	assert.Equal(t, "INR 1417.50", formatRupees(141750))
	assert.Equal(t, "INR 0.00", formatRupees(0))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env := &envelope{
		Event:      testEvent(bookings.EventConfirmed),
		Status:     NotificationStatusQueued,
		EnqueuedAt: time.Now().UTC(),
	}

	raw, err := env.ToJSON()
	require.NoError(t, err)

	var decoded envelope
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, env.Event.Type, decoded.Event.Type)
	assert.Equal(t, env.Event.SeatNumbers, decoded.Event.SeatNumbers)
	assert.Equal(t, NotificationStatusQueued, decoded.Status)
}

func TestNilServiceIsInert(t *testing.T) {
	var svc *Service

	assert.Nil(t, svc.Publisher())
	assert.NoError(t, svc.Start(context.Background()))
	assert.NoError(t, svc.Stop())
	assert.NoError(t, svc.HealthCheck(context.Background()))
}
