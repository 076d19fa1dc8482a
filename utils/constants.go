package utils

// Application constants
const (
	// Application name
	AppName = "StyleKart"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default currency for all payments
	DefaultCurrency = "INR"

	// JWT token expiration (24 hours)
	JWTExpiration = "24h"

	// Maximum transaction reference length accepted by the UPI gateway
	MaxTxnReferenceLength = 35
)

// Error messages
const (
	// Authentication errors
	ErrInvalidToken = "Invalid or expired token"
	ErrUnauthorized = "Unauthorized access"
	ErrForbidden    = "Access forbidden"

	// Checkout validation errors
	ErrCartEmpty          = "Cart items are required"
	ErrPaymentMethod      = "Payment method is required"
	ErrCustomerDetails    = "Customer details are required"
	ErrInvalidEmail       = "Invalid email format"
	ErrInvalidPhone       = "Invalid phone number format"
	ErrInvalidVPA         = "Invalid UPI id format"
	ErrOrderNotFound      = "Order not found"
	ErrPaymentInitFailure = "Payment initialization failed"

	// Server errors
	ErrInternalServer = "Internal server error"
)
