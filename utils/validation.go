package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s-]{6,14}$`)
	vpaRegex   = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64}$`)
)

// ValidateEmail checks if the email is valid
func ValidateEmail(email string) (bool, string) {
	if !emailRegex.MatchString(email) {
		return false, ErrInvalidEmail
	}
	return true, ""
}

// ValidatePhone checks if the phone number is plausible
func ValidatePhone(phone string) (bool, string) {
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return false, ErrInvalidPhone
	}
	return true, ""
}

// ValidateVPA checks the shape of a UPI id before it is sent to the gateway
func ValidateVPA(vpa string) (bool, string) {
	if !vpaRegex.MatchString(strings.TrimSpace(vpa)) {
		return false, ErrInvalidVPA
	}
	return true, ""
}
