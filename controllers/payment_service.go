package controllers

import (
	"github.com/Aravind-528/StyleKart/config"
	"github.com/Aravind-528/StyleKart/payment"
)

// paymentService is the shared provider registry used by the checkout,
// verification and webhook handlers.
var paymentService *payment.Service

// InitPaymentService wires the provider registry into the controllers.
func InitPaymentService(service *payment.Service) {
	paymentService = service
}

// NewPaymentServiceFromConfig builds the registry from the loaded config.
func NewPaymentServiceFromConfig(cfg *config.Config) *payment.Service {
	return payment.NewService(cfg.Cashfree, cfg.SprintNxt)
}
