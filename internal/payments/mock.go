package payments

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockGateway is an in-memory Gateway for local development and tests.
// Signatures verify when they equal "sig-" + orderID + "-" + paymentID.
type MockGateway struct {
	mu      sync.Mutex
	seq     atomic.Int64
	orders  map[string]*Order
	failing bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{orders: make(map[string]*Order)}
}

// SetFailing makes subsequent CreateOrder calls return ErrGatewayUnavailable.
func (g *MockGateway) SetFailing(failing bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing = failing
}

func (g *MockGateway) CreateOrder(ctx context.Context, amountPaise int64, currency string, receipt string) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failing {
		return nil, fmt.Errorf("%w: mock gateway set to fail", ErrGatewayUnavailable)
	}

	order := &Order{
		ID:          fmt.Sprintf("order_mock_%d", g.seq.Add(1)),
		AmountPaise: amountPaise,
		Currency:    currency,
	}
	g.orders[order.ID] = order

	return order, nil
}

func (g *MockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature != "" && signature == MockSignature(orderID, paymentID)
}

func (g *MockGateway) KeyID() string {
	return "rzp_test_mock"
}

// MockSignature returns the signature VerifySignature accepts for the pair.
func MockSignature(orderID, paymentID string) string {
	if orderID == "" || paymentID == "" {
		return ""
	}
	return "sig-" + orderID + "-" + paymentID
}
