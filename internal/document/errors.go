package document

import "errors"

var (
	ErrNotFound        = errors.New("document: not found")
	ErrForbidden       = errors.New("document: access denied")
	ErrInvalidCategory = errors.New("document: invalid category")

	// ErrInvalidFile is the root of every content-verifier rejection; wrap it
	// with the concrete reason.
	ErrInvalidFile = errors.New("document: invalid file")
)
