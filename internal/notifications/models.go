package notifications

import (
	"encoding/json"
	"time"

	"busly/internal/bookings"
)

type NotificationStatus string

const (
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// EmailMessage is what the consumer hands to the email service after
// resolving the recipient of a booking event.
type EmailMessage struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	HTMLBody       string
	TextBody       string
}

// envelope is the wire format on the booking events topic. It carries
// the orchestrator event plus delivery bookkeeping.
type envelope struct {
	Event      bookings.Event     `json:"event"`
	Status     NotificationStatus `json:"status"`
	EnqueuedAt time.Time          `json:"enqueued_at"`
}

func (e *envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
