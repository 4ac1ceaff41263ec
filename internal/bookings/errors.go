package bookings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOrderNotFound       = errors.New("payment order not found")
	ErrNotOwner            = errors.New("reservation does not belong to user")

	// ErrPaymentVerificationFailed means the gateway signature did not
	// check out. The reservation is released; the money, if captured,
	// is reconciled manually.
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
)

// ValidationError rejects a request before any seat is touched
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// SeatUnavailableError lists the seats that blocked a hold. Seats not
// listed are still open, so the client can retry with a new pick.
type SeatUnavailableError struct {
	Seats []UnavailableSeat
}

type UnavailableSeat struct {
	SeatID     string `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
}

func (e *SeatUnavailableError) Error() string {
	numbers := make([]string, 0, len(e.Seats))
	for _, seat := range e.Seats {
		numbers = append(numbers, seat.SeatNumber)
	}
	return fmt.Sprintf("seats unavailable: %s", strings.Join(numbers, ", "))
}
