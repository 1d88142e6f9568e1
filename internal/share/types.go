package share

import "time"

// Permission is the access level a share grants.
type Permission string

const (
	PermissionRead      Permission = "READ"
	PermissionReadWrite Permission = "READ_WRITE"
)

// ParsePermission validates a raw permission string.
func ParsePermission(raw string) (Permission, error) {
	switch p := Permission(raw); p {
	case PermissionRead, PermissionReadWrite:
		return p, nil
	default:
		return "", ErrInvalidPermission
	}
}

// Share links one document to one grantee. The pair (DocumentID, GranteeID)
// is unique; granting again overwrites permission and expiry in place.
type Share struct {
	ID         string
	DocumentID string
	GranteeID  string
	Permission Permission
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Expired reports whether the share's expiry has passed. Shares without an
// expiry never expire; a share expiring exactly now is still live.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// UserSummary is the slice of a user record exposed in share listings.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// View is a share as presented to the document owner.
type View struct {
	ID         string      `json:"id"`
	DocumentID string      `json:"documentId"`
	Grantee    UserSummary `json:"sharedWith"`
	Permission Permission  `json:"permission"`
	ExpiresAt  *time.Time  `json:"expiresAt,omitempty"`
	IsExpired  bool        `json:"isExpired"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// SharedDocument is a document as presented to a grantee.
type SharedDocument struct {
	ShareID    string      `json:"shareId"`
	DocumentID string      `json:"documentId"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	MIMEType   string      `json:"mimeType"`
	Size       int64       `json:"size"`
	Owner      UserSummary `json:"owner"`
	Permission Permission  `json:"permission"`
	ExpiresAt  *time.Time  `json:"expiresAt,omitempty"`
	SharedAt   time.Time   `json:"sharedAt"`
}
