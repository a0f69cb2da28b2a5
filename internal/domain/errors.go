package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidInput    = errors.New("invalid input")
	ErrRateLimited     = errors.New("please wait before requesting another OTP")
	ErrDeliveryFailed  = errors.New("OTP could not be delivered")
	ErrNoPendingOTP    = errors.New("no OTP record found or already used")
	ErrExpired         = errors.New("OTP expired")
	ErrInvalidCode     = errors.New("invalid OTP")
	ErrTooManyAttempts = errors.New("too many invalid attempts")

	// ErrStorage and ErrConfig are infrastructure failures; their detail is logged, never returned to callers.
	ErrStorage = errors.New("storage failure")
	ErrConfig  = errors.New("invalid configuration")
)
