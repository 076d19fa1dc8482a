package payment

import "context"

// PaymentMethod identifies a payment provider.
type PaymentMethod string

const (
	MethodCOD       PaymentMethod = "cod"
	MethodCashfree  PaymentMethod = "cashfree"
	MethodSprintNxt PaymentMethod = "sprintnxt"
)

// PaymentStatus is the internal payment state shared by all providers.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSuccess   PaymentStatus = "success"
	StatusFailed    PaymentStatus = "failed"
	StatusCancelled PaymentStatus = "cancelled"
)

// Terminal reports whether a status can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// PaymentRequest carries everything a provider needs to start a payment.
// It is built fresh per checkout attempt and never persisted.
type PaymentRequest struct {
	OrderID       string
	Amount        float64
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ReturnURL     string
	Metadata      map[string]interface{}
}

// PaymentResponse is the normalized result of creating a payment.
type PaymentResponse struct {
	Success       bool
	PaymentID     string
	TransactionID string
	Status        PaymentStatus
	PaymentURL    string
	Message       string
	Error         string
	Metadata      map[string]interface{}
}

// PaymentVerification is the normalized result of a status check.
type PaymentVerification struct {
	Success   bool
	PaymentID string
	Status    PaymentStatus
	Amount    float64
	Metadata  map[string]interface{}
}

// Provider is the contract every payment gateway implements.
//
// CreatePayment must not panic; gateway and network failures are converted
// into a PaymentResponse with Success=false and a non-empty Error.
// VerifyPayment is idempotent and safe to call repeatedly; when the gateway
// reports an ambiguous or unknown state it returns StatusPending rather than
// StatusFailed so an in-flight payment is never killed prematurely.
type Provider interface {
	Name() string
	CreatePayment(ctx context.Context, req PaymentRequest) PaymentResponse
	VerifyPayment(ctx context.Context, paymentID string, metadata map[string]interface{}) PaymentVerification
	IsAvailable() bool
}

// Canceler is the optional cancellation capability.
type Canceler interface {
	CancelPayment(ctx context.Context, paymentID string) PaymentResponse
}
