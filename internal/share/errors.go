package share

import "errors"

var (
	ErrNotFound          = errors.New("share: not found")
	ErrForbidden         = errors.New("share: access denied")
	ErrSelfShare         = errors.New("share: cannot share a document with its owner")
	ErrExpiryInPast      = errors.New("share: expiry must be in the future")
	ErrInvalidPermission = errors.New("share: invalid permission")
	ErrUnknownGrantee    = errors.New("share: grantee does not exist")
	ErrDocumentMismatch  = errors.New("share: share does not belong to this document")
)
