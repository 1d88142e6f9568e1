package auth

import "errors"

var (
	ErrNotFound     = errors.New("auth: not found")
	ErrUnauthorized = errors.New("auth: unauthorized")
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrInvalidOTP covers both unknown and expired codes so callers cannot
	// distinguish the two.
	ErrInvalidOTP = errors.New("auth: invalid or expired OTP code")

	// ErrInvalidToken indicates the bearer token failed validation.
	ErrInvalidToken = errors.New("auth: invalid token")
)
