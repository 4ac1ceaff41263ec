package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"busly/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayVerifySignature(t *testing.T) {
	gateway := NewRazorpayGateway(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "test_secret",
	})

	orderID := "order_Nx4k2jD9sQ1mPa"
	paymentID := "pay_Nx4kpL7fT2vRbc"
	valid := testSignature("test_secret", orderID, paymentID)

	assert.True(t, gateway.VerifySignature(orderID, paymentID, valid))

	assert.False(t, gateway.VerifySignature(orderID, paymentID, "forged"))
	assert.False(t, gateway.VerifySignature(orderID, "pay_other", valid))
	assert.False(t, gateway.VerifySignature("order_other", paymentID, valid))
	assert.False(t, gateway.VerifySignature(orderID, paymentID, ""))
	assert.False(t, gateway.VerifySignature("", paymentID, valid))

	// Signed with the wrong secret
	assert.False(t, gateway.VerifySignature(orderID, paymentID, testSignature("other_secret", orderID, paymentID)))
}

func TestMockGatewayCreateOrder(t *testing.T) {
	gateway := NewMockGateway()

	first, err := gateway.CreateOrder(context.Background(), 95000, "INR", "rcpt-1")
	require.NoError(t, err)
	assert.Equal(t, int64(95000), first.AmountPaise)
	assert.Equal(t, "INR", first.Currency)
	assert.NotEmpty(t, first.ID)

	second, err := gateway.CreateOrder(context.Background(), 45000, "INR", "rcpt-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMockGatewayFailing(t *testing.T) {
	gateway := NewMockGateway()
	gateway.SetFailing(true)

	_, err := gateway.CreateOrder(context.Background(), 95000, "INR", "rcpt-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	gateway.SetFailing(false)
	_, err = gateway.CreateOrder(context.Background(), 95000, "INR", "rcpt-1")
	assert.NoError(t, err)
}

func TestMockGatewayCancelledContext(t *testing.T) {
	gateway := NewMockGateway()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.CreateOrder(ctx, 95000, "INR", "rcpt-1")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestMockGatewaySignature(t *testing.T) {
	gateway := NewMockGateway()

	assert.True(t, gateway.VerifySignature("order_mock_1", "pay_1", MockSignature("order_mock_1", "pay_1")))
	assert.False(t, gateway.VerifySignature("order_mock_1", "pay_1", "wrong"))
	assert.False(t, gateway.VerifySignature("order_mock_1", "pay_1", ""))
}
