package payments

import (
	"context"
	"errors"
)

var (
	// ErrGatewayUnavailable covers network failures, timeouts and gateway
	// rejections during order creation. Callers fail closed: seats held
	// for the order are released.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Order is a payment order issued by the gateway
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// Gateway is the payment-collection capability. The booking orchestrator
// only ever talks to this interface, so alternate providers can be
// substituted without touching it.
type Gateway interface {
	// CreateOrder asks the gateway for a payment order of the given
	// amount. The receipt is an idempotency reference (the reservation
	// id) recorded with the order.
	CreateOrder(ctx context.Context, amountPaise int64, currency string, receipt string) (*Order, error)
	// VerifySignature checks the gateway's cryptographic confirmation
	// that the payment belongs to the order. Pure computation, no I/O.
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID is the public key identifier the client-side widget needs.
	KeyID() string
}
