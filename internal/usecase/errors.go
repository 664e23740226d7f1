package usecase

import "errors"

// Sentinel errors returned by the services. Handlers map these to HTTP
// responses with errors.Is; anything that doesn't match is an
// infrastructure failure.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotAuthenticated    = errors.New("invalid email or password")
	ErrCodeNotFound        = errors.New("no pending login code")
	ErrCodeExpired         = errors.New("login code expired")
	ErrCodeAlreadyConsumed = errors.New("login code already consumed")
	ErrCodeMismatch        = errors.New("login code mismatch")
	ErrDeliveryFailed      = errors.New("login code delivery failed")
)
