package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateBarcode    = errors.New("barcode already exists")
	ErrDuplicateUsername   = errors.New("staff already exists")
	ErrDuplicateUser       = errors.New("user already registered")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrUnauthorized        = errors.New("access denied: insufficient permissions")
	ErrProtectedAccount    = errors.New("cannot delete the super admin")
	ErrPaymentFailed       = errors.New("payment could not be confirmed")
	ErrPersistence         = errors.New("persistence failed")
	ErrInvariant           = errors.New("store invariant violated")
	ErrAINotConfigured     = errors.New("AI service not configured")
)

// Specific not-found and invalid-input kinds still match their family with errors.Is.
var (
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrStaffNotFound   = fmt.Errorf("staff %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrOutletNotFound  = fmt.Errorf("outlet %w", ErrNotFound)
	ErrInvalidCheckout = fmt.Errorf("%w: missing or inconsistent checkout details", ErrInvalidInput)
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
)
