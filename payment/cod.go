package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// CODProvider handles Cash on Delivery. It never talks to a gateway: it only
// mints a local reference and leaves the payment pending until an admin marks
// the order delivered.
type CODProvider struct{}

func NewCODProvider() *CODProvider {
	return &CODProvider{}
}

func (p *CODProvider) Name() string {
	return "Cash on Delivery"
}

// CreatePayment never fails for infrastructure reasons; there is no
// infrastructure involved.
func (p *CODProvider) CreatePayment(ctx context.Context, req PaymentRequest) PaymentResponse {
	paymentID := fmt.Sprintf("COD-%d-%s", time.Now().UnixMilli(), randomSuffix(5))

	return PaymentResponse{
		Success:       true,
		PaymentID:     paymentID,
		TransactionID: paymentID,
		Status:        StatusPending,
		Message:       "Order placed successfully. Pay cash on delivery.",
		Metadata: map[string]interface{}{
			"orderId":  req.OrderID,
			"amount":   req.Amount,
			"currency": req.Currency,
		},
	}
}

// VerifyPayment always reports pending. COD orders become paid only through
// the admin order-status update, never through this provider.
func (p *CODProvider) VerifyPayment(ctx context.Context, paymentID string, metadata map[string]interface{}) PaymentVerification {
	return PaymentVerification{
		Success:   true,
		PaymentID: paymentID,
		Status:    StatusPending,
		Metadata: map[string]interface{}{
			"message": "COD payment pending manual verification",
		},
	}
}

func (p *CODProvider) CancelPayment(ctx context.Context, paymentID string) PaymentResponse {
	return PaymentResponse{
		Success:   true,
		PaymentID: paymentID,
		Status:    StatusCancelled,
		Message:   "COD order cancelled successfully",
	}
}

func (p *CODProvider) IsAvailable() bool {
	return true
}

// randomSuffix returns n random bytes hex-encoded.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
