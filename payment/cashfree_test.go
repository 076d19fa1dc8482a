package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCashfreeTestProvider(handler http.Handler) (*CashfreeProvider, *httptest.Server) {
	server := httptest.NewServer(handler)
	provider := NewCashfreeProvider(CashfreeConfig{
		AppID:         "test-app",
		SecretKey:     "test-secret",
		WebhookSecret: "whsec",
		APIBaseURL:    server.URL,
		ReturnBaseURL: "https://shop.example.com",
	})
	return provider, server
}

func TestCashfreeUnavailableWithoutCredentials(t *testing.T) {
	provider := NewCashfreeProvider(CashfreeConfig{})
	assert.False(t, provider.IsAvailable())

	resp := provider.CreatePayment(context.Background(), PaymentRequest{OrderID: "o1"})
	assert.False(t, resp.Success)
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Contains(t, resp.Error, "not configured")
}

func TestCashfreeCreatePayment(t *testing.T) {
	var gotBody map[string]interface{}
	provider, server := newCashfreeTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders", r.URL.Path)
		assert.Equal(t, "test-app", r.Header.Get("x-client-id"))
		assert.Equal(t, "test-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, cashfreeAPIVersion, r.Header.Get("x-api-version"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id":           "order-42",
			"cf_order_id":        12345,
			"order_status":       "ACTIVE",
			"payment_session_id": "session_abc",
		})
	}))
	defer server.Close()

	resp := provider.CreatePayment(context.Background(), PaymentRequest{
		OrderID:       "order-42",
		Amount:        1299.50,
		Currency:      "INR",
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "9876543210",
	})

	assert.True(t, resp.Success)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, "order-42", resp.PaymentID)
	assert.Equal(t, "session_abc", resp.TransactionID)
	assert.NotEmpty(t, resp.PaymentURL)

	assert.Equal(t, "order-42", gotBody["order_id"])
	assert.Equal(t, 1299.50, gotBody["order_amount"])
	customer := gotBody["customer_details"].(map[string]interface{})
	assert.Equal(t, "asha_example_com", customer["customer_id"])
	meta := gotBody["order_meta"].(map[string]interface{})
	assert.Equal(t, "https://shop.example.com/v1/payment/webhook/cashfree", meta["notify_url"])
}

func TestCashfreeCreatePaymentRejected(t *testing.T) {
	provider, server := newCashfreeTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "order_amount invalid"})
	}))
	defer server.Close()

	resp := provider.CreatePayment(context.Background(), PaymentRequest{OrderID: "o1", Amount: -5})
	assert.False(t, resp.Success)
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "order_amount invalid", resp.Error)
}

func TestCashfreeVerifyPayment(t *testing.T) {
	provider, server := newCashfreeTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pg/orders/order-42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id":     "order-42",
			"cf_order_id":  "12345",
			"order_status": "PAID",
			"order_amount": 1299.50,
		})
	}))
	defer server.Close()

	verification := provider.VerifyPayment(context.Background(), "order-42", nil)
	assert.True(t, verification.Success)
	assert.Equal(t, StatusSuccess, verification.Status)
	assert.Equal(t, 1299.50, verification.Amount)
	assert.Equal(t, "12345", verification.Metadata["transactionId"])
}

func TestCashfreeVerifyTransportError(t *testing.T) {
	provider, server := newCashfreeTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	verification := provider.VerifyPayment(context.Background(), "order-42", nil)
	assert.False(t, verification.Success)
	assert.Equal(t, StatusFailed, verification.Status)
	assert.NotEmpty(t, verification.Metadata["error"])
}

func TestMapCashfreeStatus(t *testing.T) {
	cases := map[string]PaymentStatus{
		"PAID":       StatusSuccess,
		"ACTIVE":     StatusPending,
		"EXPIRED":    StatusCancelled,
		"TERMINATED": StatusCancelled,
		"FAILED":     StatusFailed,
		"":           StatusFailed,
		"GARBAGE":    StatusFailed,
	}
	for input, want := range cases {
		assert.Equal(t, want, MapCashfreeStatus(input), "status %q", input)
	}
}

func TestCashfreeWebhookSignature(t *testing.T) {
	provider := NewCashfreeProvider(CashfreeConfig{
		AppID: "a", SecretKey: "s", WebhookSecret: "whsec",
	})
	assert.True(t, provider.WebhookSecretConfigured())

	timestamp := "1700000000"
	body := []byte(`{"orderId":"order-42","orderStatus":"PAID"}`)

	h := hmac.New(sha256.New, []byte("whsec"))
	h.Write([]byte(timestamp))
	h.Write(body)
	signature := base64.StdEncoding.EncodeToString(h.Sum(nil))

	assert.True(t, provider.VerifyWebhookSignature(timestamp, body, signature))
	assert.False(t, provider.VerifyWebhookSignature(timestamp, body, "bogus"))
	assert.False(t, provider.VerifyWebhookSignature("1700000001", body, signature))
	assert.False(t, provider.VerifyWebhookSignature(timestamp, body, ""))

	unconfigured := NewCashfreeProvider(CashfreeConfig{AppID: "a", SecretKey: "s"})
	assert.False(t, unconfigured.WebhookSecretConfigured())
	assert.False(t, unconfigured.VerifyWebhookSignature(timestamp, body, signature))
}

func TestCashfreeCancelPayment(t *testing.T) {
	provider, server := newCashfreeTestProvider(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders/order-42/refunds", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"order_id": "order-42"})
	}))
	defer server.Close()

	resp := provider.CancelPayment(context.Background(), "order-42")
	assert.True(t, resp.Success)
	assert.Equal(t, StatusCancelled, resp.Status)
}
