package payment

import (
	"context"
	"fmt"

	"github.com/Aravind-528/StyleKart/utils"
)

// Service routes payment operations to the provider selected by method. The
// provider set is closed and known at compile time, so it is a plain struct
// with an exhaustive switch instead of a dynamic registry.
type Service struct {
	cod       *CODProvider
	cashfree  *CashfreeProvider
	sprintNxt *SprintNxtProvider
}

// MethodInfo describes one selectable payment method.
type MethodInfo struct {
	Method    PaymentMethod `json:"method"`
	Name      string        `json:"name"`
	Available bool          `json:"available"`
}

func NewService(cashfreeCfg CashfreeConfig, sprintNxtCfg SprintNxtConfig) *Service {
	return &Service{
		cod:       NewCODProvider(),
		cashfree:  NewCashfreeProvider(cashfreeCfg),
		sprintNxt: NewSprintNxtProvider(sprintNxtCfg),
	}
}

// provider resolves a method to its provider. An unknown method is a
// programming error at the call site, reported as such.
func (s *Service) provider(method PaymentMethod) (Provider, error) {
	switch method {
	case MethodCOD:
		return s.cod, nil
	case MethodCashfree:
		return s.cashfree, nil
	case MethodSprintNxt:
		return s.sprintNxt, nil
	default:
		return nil, fmt.Errorf("payment provider for %q not found", method)
	}
}

// Cashfree exposes the redirect gateway for webhook handling.
func (s *Service) Cashfree() *CashfreeProvider {
	return s.cashfree
}

// SprintNxt exposes the UPI gateway for webhook and VPA handling.
func (s *Service) SprintNxt() *SprintNxtProvider {
	return s.sprintNxt
}

// AvailableMethods lists every registered method with its availability.
func (s *Service) AvailableMethods() []MethodInfo {
	return []MethodInfo{
		{Method: MethodCOD, Name: s.cod.Name(), Available: s.cod.IsAvailable()},
		{Method: MethodCashfree, Name: s.cashfree.Name(), Available: s.cashfree.IsAvailable()},
		{Method: MethodSprintNxt, Name: s.sprintNxt.Name(), Available: s.sprintNxt.IsAvailable()},
	}
}

// CreatePayment dispatches creation to the selected provider. Unavailable
// providers produce a clean failure response rather than a downstream error.
func (s *Service) CreatePayment(ctx context.Context, method PaymentMethod, req PaymentRequest) PaymentResponse {
	provider, err := s.provider(method)
	if err != nil {
		utils.LogError("Payment creation failed for %s: %v", method, err)
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   err.Error(),
		}
	}

	if !provider.IsAvailable() {
		utils.LogError("Payment method %s selected but %s is not configured", method, provider.Name())
		return PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   fmt.Sprintf("%s is not available or not configured", provider.Name()),
		}
	}

	return provider.CreatePayment(ctx, req)
}

// VerifyPayment dispatches verification to the selected provider.
func (s *Service) VerifyPayment(ctx context.Context, method PaymentMethod, paymentID string, metadata map[string]interface{}) PaymentVerification {
	provider, err := s.provider(method)
	if err != nil {
		utils.LogError("Payment verification failed for %s: %v", method, err)
		return PaymentVerification{
			PaymentID: paymentID,
			Status:    StatusFailed,
			Metadata:  map[string]interface{}{"error": err.Error()},
		}
	}

	return provider.VerifyPayment(ctx, paymentID, metadata)
}

// CancelPayment dispatches cancellation when the provider supports it.
func (s *Service) CancelPayment(ctx context.Context, method PaymentMethod, paymentID string) PaymentResponse {
	provider, err := s.provider(method)
	if err != nil {
		utils.LogError("Payment cancellation failed for %s: %v", method, err)
		return PaymentResponse{
			Success:   false,
			PaymentID: paymentID,
			Status:    StatusFailed,
			Error:     err.Error(),
		}
	}

	canceler, ok := provider.(Canceler)
	if !ok {
		return PaymentResponse{
			Success:   false,
			PaymentID: paymentID,
			Status:    StatusFailed,
			Error:     fmt.Sprintf("%s does not support cancellation", provider.Name()),
		}
	}

	return canceler.CancelPayment(ctx, paymentID)
}
