package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(CashfreeConfig{}, SprintNxtConfig{})
}

func TestServiceAvailableMethods(t *testing.T) {
	service := newTestService()
	methods := service.AvailableMethods()

	require.Len(t, methods, 3)
	byMethod := map[PaymentMethod]MethodInfo{}
	for _, m := range methods {
		byMethod[m.Method] = m
	}

	assert.True(t, byMethod[MethodCOD].Available)
	assert.False(t, byMethod[MethodCashfree].Available)
	assert.False(t, byMethod[MethodSprintNxt].Available)
	assert.Equal(t, "Cash on Delivery", byMethod[MethodCOD].Name)
}

func TestServiceRejectsUnknownMethod(t *testing.T) {
	service := newTestService()

	resp := service.CreatePayment(context.Background(), "paypal", PaymentRequest{OrderID: "o1"})
	assert.False(t, resp.Success)
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Contains(t, resp.Error, "not found")
}

func TestServiceRejectsUnavailableProvider(t *testing.T) {
	service := newTestService()

	resp := service.CreatePayment(context.Background(), MethodCashfree, PaymentRequest{OrderID: "o1"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Cashfree is not available or not configured", resp.Error)

	resp = service.CreatePayment(context.Background(), MethodSprintNxt, PaymentRequest{OrderID: "o1"})
	assert.False(t, resp.Success)
	assert.Equal(t, "SprintNxt UPI is not available or not configured", resp.Error)
}

func TestServiceCODFlow(t *testing.T) {
	service := newTestService()

	resp := service.CreatePayment(context.Background(), MethodCOD, PaymentRequest{
		OrderID: "o1", Amount: 100, Currency: "INR",
	})
	require.True(t, resp.Success)
	assert.Equal(t, StatusPending, resp.Status)

	verification := service.VerifyPayment(context.Background(), MethodCOD, resp.PaymentID, nil)
	assert.Equal(t, StatusPending, verification.Status)
}

func TestServiceCancelPayment(t *testing.T) {
	service := newTestService()

	// COD implements cancellation.
	resp := service.CancelPayment(context.Background(), MethodCOD, "COD-1-ab")
	assert.True(t, resp.Success)
	assert.Equal(t, StatusCancelled, resp.Status)

	// SprintNxt does not; UPI collections cannot be recalled.
	resp = service.CancelPayment(context.Background(), MethodSprintNxt, "TXN1")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "does not support cancellation")
}

func TestServiceVerifyUnknownMethod(t *testing.T) {
	service := newTestService()

	verification := service.VerifyPayment(context.Background(), "stripe", "x", nil)
	assert.False(t, verification.Success)
	assert.Equal(t, StatusFailed, verification.Status)
}
