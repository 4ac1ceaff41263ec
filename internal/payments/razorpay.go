package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"busly/internal/shared/config"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway implements Gateway against the Razorpay Orders API.
// Amounts are already in paise, Razorpay's native unit.
type RazorpayGateway struct {
	client    *razorpay.Client
	keyID     string
	keySecret string
}

// NewRazorpayGateway creates a gateway from the configured credentials
func NewRazorpayGateway(cfg config.RazorpayConfig) *RazorpayGateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)

	return &RazorpayGateway{
		client:    client,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
	}
}

// CreateOrder creates a Razorpay order for the amount
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency string, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	}

	type orderResult struct {
		body map[string]interface{}
		err  error
	}
	resultCh := make(chan orderResult, 1)

	// The SDK has no context support, so the select below keeps us
	// honouring caller cancellation and deadlines.
	go func() {
		body, err := g.client.Order.Create(data, nil)
		resultCh <- orderResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, ctx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, res.err)
		}

		orderID, ok := res.body["id"].(string)
		if !ok || orderID == "" {
			return nil, fmt.Errorf("%w: order response missing id", ErrGatewayUnavailable)
		}

		return &Order{
			ID:          orderID,
			AmountPaise: amountPaise,
			Currency:    currency,
		}, nil
	}
}

// VerifySignature checks the HMAC-SHA256 confirmation Razorpay sends with
// a completed payment: hex(hmac_sha256(order_id + "|" + payment_id, secret)).
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// KeyID returns the public Razorpay key id for the checkout widget
func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}
