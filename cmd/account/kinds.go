package account

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrInvalidInput = errors.New("invalid_input")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
)

// Activation outcomes. Each maps to one HTTP status in the API layer.
var (
	// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyActivated   = errors.New("already activated")
	ErrCodeExpired        = errors.New("activation code expired")
	ErrWrongCode          = errors.New("wrong activation code")
)

// Validation labels, reported in this order.
const (
	LabelInvalidEmail    = "Invalid email"
	LabelInvalidPassword = "Invalid password"
	LabelEmailTaken      = "An account with this email already exists"
)
