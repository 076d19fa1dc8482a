package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/Aravind-528/StyleKart/utils"
)

const cashfreeAPIVersion = "2023-08-01"

// CashfreeConfig holds the gateway credentials and environment.
type CashfreeConfig struct {
	AppID         string `envconfig:"CASHFREE_APP_ID"`
	SecretKey     string `envconfig:"CASHFREE_SECRET_KEY"`
	WebhookSecret string `envconfig:"CASHFREE_WEBHOOK_SECRET"`
	Env           string `envconfig:"CASHFREE_ENV" default:"TEST"`
	APIBaseURL    string `envconfig:"CASHFREE_API_URL"`
	ReturnBaseURL string `envconfig:"PUBLIC_API_URL"`
}

// CashfreeProvider creates hosted checkout sessions with the Cashfree order
// API and verifies them with the order-status call.
type CashfreeProvider struct {
	config  CashfreeConfig
	baseURL string
	client  *http.Client
}

func NewCashfreeProvider(cfg CashfreeConfig) *CashfreeProvider {
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		if cfg.Env == "PROD" {
			baseURL = "https://api.cashfree.com"
		} else {
			baseURL = "https://sandbox.cashfree.com"
		}
	}

	return &CashfreeProvider{
		config:  cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *CashfreeProvider) Name() string {
	return "Cashfree"
}

func (p *CashfreeProvider) IsAvailable() bool {
	return p.config.AppID != "" && p.config.SecretKey != ""
}

var customerIDPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

type cashfreeOrderResponse struct {
	OrderID               string      `json:"order_id"`
	CfOrderID             json.Number `json:"cf_order_id"`
	OrderStatus           string      `json:"order_status"`
	OrderAmount           float64     `json:"order_amount"`
	PaymentSessionID      string      `json:"payment_session_id"`
	PaymentLink           string      `json:"payment_link"`
	PaymentMethod         string      `json:"payment_method"`
	PaymentCompletionTime string      `json:"payment_completion_time"`
	Message               string      `json:"message"`
}

// CreatePayment opens a hosted order session and returns the redirect URL.
func (p *CashfreeProvider) CreatePayment(ctx context.Context, req PaymentRequest) PaymentResponse {
	if !p.IsAvailable() {
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   "Cashfree is not configured",
		}
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = p.config.ReturnBaseURL + "/v1/payment/callback"
	}

	orderData := map[string]interface{}{
		"order_id":       req.OrderID,
		"order_amount":   req.Amount,
		"order_currency": req.Currency,
		"customer_details": map[string]interface{}{
			"customer_id":    customerIDPattern.ReplaceAllString(req.CustomerEmail, "_"),
			"customer_name":  req.CustomerName,
			"customer_email": req.CustomerEmail,
			"customer_phone": req.CustomerPhone,
		},
		"order_meta": map[string]interface{}{
			"return_url": returnURL,
			"notify_url": p.config.ReturnBaseURL + "/v1/payment/webhook/cashfree",
		},
	}

	var data cashfreeOrderResponse
	status, err := p.doRequest(ctx, http.MethodPost, p.baseURL+"/pg/orders", orderData, &data)
	if err != nil {
		utils.LogError("Cashfree order creation failed for order %s: %v", req.OrderID, err)
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   err.Error(),
		}
	}

	if status < 200 || status >= 300 || data.PaymentSessionID == "" {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed to create Cashfree order (HTTP %d)", status)
		}
		utils.LogError("Cashfree rejected order %s: %s", req.OrderID, msg)
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   msg,
		}
	}

	paymentURL := data.PaymentLink
	if paymentURL == "" {
		paymentURL = fmt.Sprintf("%s/pg/view/order/%s", p.baseURL, data.PaymentSessionID)
	}

	utils.LogInfo("Cashfree session created for order %s", req.OrderID)
	return PaymentResponse{
		Success:       true,
		PaymentID:     data.OrderID,
		TransactionID: data.PaymentSessionID,
		Status:        StatusPending,
		PaymentURL:    paymentURL,
		Message:       "Payment session created successfully",
		Metadata: map[string]interface{}{
			"sessionId": data.PaymentSessionID,
			"orderId":   data.OrderID,
		},
	}
}

// VerifyPayment fetches the gateway order and maps its status vocabulary onto
// the internal enum.
func (p *CashfreeProvider) VerifyPayment(ctx context.Context, orderID string, metadata map[string]interface{}) PaymentVerification {
	if !p.IsAvailable() {
		return PaymentVerification{
			PaymentID: orderID,
			Status:    StatusFailed,
			Metadata:  map[string]interface{}{"error": "Cashfree is not configured"},
		}
	}

	var data cashfreeOrderResponse
	status, err := p.doRequest(ctx, http.MethodGet, p.baseURL+"/pg/orders/"+orderID, nil, &data)
	if err != nil {
		utils.LogError("Cashfree verification failed for %s: %v", orderID, err)
		return PaymentVerification{
			PaymentID: orderID,
			Status:    StatusFailed,
			Metadata:  map[string]interface{}{"error": err.Error()},
		}
	}
	if status < 200 || status >= 300 {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed to verify payment (HTTP %d)", status)
		}
		return PaymentVerification{
			PaymentID: orderID,
			Status:    StatusFailed,
			Metadata:  map[string]interface{}{"error": msg},
		}
	}

	mapped := MapCashfreeStatus(data.OrderStatus)
	return PaymentVerification{
		Success:   data.OrderStatus == "PAID",
		PaymentID: data.OrderID,
		Status:    mapped,
		Amount:    data.OrderAmount,
		Metadata: map[string]interface{}{
			"transactionId": data.CfOrderID.String(),
			"paymentMethod": data.PaymentMethod,
			"paymentTime":   data.PaymentCompletionTime,
		},
	}
}

// CancelPayment initiates a refund for a paid order.
func (p *CashfreeProvider) CancelPayment(ctx context.Context, orderID string) PaymentResponse {
	if !p.IsAvailable() {
		return PaymentResponse{
			Success:   false,
			PaymentID: orderID,
			Status:    StatusFailed,
			Error:     "Cashfree is not configured",
		}
	}

	refundData := map[string]interface{}{
		"refund_id":   fmt.Sprintf("refund-%d", time.Now().UnixMilli()),
		"refund_note": "Order cancelled by customer",
	}

	var data cashfreeOrderResponse
	status, err := p.doRequest(ctx, http.MethodPost, p.baseURL+"/pg/orders/"+orderID+"/refunds", refundData, &data)
	if err != nil {
		return PaymentResponse{
			Success:   false,
			PaymentID: orderID,
			Status:    StatusFailed,
			Error:     err.Error(),
		}
	}
	if status < 200 || status >= 300 {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed to cancel payment (HTTP %d)", status)
		}
		return PaymentResponse{
			Success:   false,
			PaymentID: orderID,
			Status:    StatusFailed,
			Error:     msg,
		}
	}

	return PaymentResponse{
		Success:   true,
		PaymentID: orderID,
		Status:    StatusCancelled,
		Message:   "Payment cancelled and refund initiated",
	}
}

// VerifyWebhookSignature checks the x-webhook-signature header: base64 of
// HMAC-SHA256 over timestamp+rawBody keyed with the webhook secret. Returns
// false when no secret is configured so callers can decide how to gate.
func (p *CashfreeProvider) VerifyWebhookSignature(timestamp string, rawBody []byte, signature string) bool {
	if p.config.WebhookSecret == "" || signature == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(p.config.WebhookSecret))
	h.Write([]byte(timestamp))
	h.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookSecretConfigured reports whether signature verification can run.
func (p *CashfreeProvider) WebhookSecretConfigured() bool {
	return p.config.WebhookSecret != ""
}

// MapCashfreeStatus translates the gateway's order states into the internal
// four-state enum.
func MapCashfreeStatus(orderStatus string) PaymentStatus {
	switch orderStatus {
	case "PAID":
		return StatusSuccess
	case "ACTIVE":
		return StatusPending
	case "EXPIRED", "TERMINATED":
		return StatusCancelled
	default:
		return StatusFailed
	}
}

func (p *CashfreeProvider) doRequest(ctx context.Context, method, url string, body interface{}, out interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", p.config.AppID)
	req.Header.Set("x-client-secret", p.config.SecretKey)
	req.Header.Set("x-api-version", cashfreeAPIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("invalid gateway response: %w", err)
	}
	return resp.StatusCode, nil
}
