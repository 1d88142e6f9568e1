package gdpr

import "errors"

var (
	ErrNotFound           = errors.New("gdpr: not found")
	ErrInvalidConsentType = errors.New("gdpr: invalid consent type")
	ErrNothingToRectify   = errors.New("gdpr: no fields to rectify")
)
