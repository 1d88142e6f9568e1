package audit

import "time"

// Action names a recorded event.
type Action string

const (
	ActionLoginOTPIssued   Action = "LOGIN_OTP_ISSUED"
	ActionLoginVerified    Action = "LOGIN_VERIFIED"
	ActionDocumentUploaded Action = "DOCUMENT_UPLOADED"
	ActionDocumentViewed   Action = "DOCUMENT_VIEWED"
	ActionDocumentFetched  Action = "DOCUMENT_DOWNLOADED"
	ActionDocumentDeleted  Action = "DOCUMENT_DELETED"
	ActionDocumentShared   Action = "DOCUMENT_SHARED"
	ActionShareRevoked     Action = "SHARE_REVOKED"
	ActionShareUpdated     Action = "SHARE_PERMISSION_UPDATED"
	ActionDataExport       Action = "DATA_EXPORT"
	ActionDataDeletion     Action = "DATA_DELETION"
	ActionDataRectified    Action = "DATA_RECTIFICATION"
	ActionConsentGranted   Action = "CONSENT_GRANTED"
	ActionConsentRevoked   Action = "CONSENT_REVOKED"
)

// Entity types referenced by audit entries.
const (
	EntityUser     = "USER"
	EntityDocument = "DOCUMENT"
	EntityShare    = "SHARE"
	EntityConsent  = "CONSENT"
)

// Origin captures where a request came from.
type Origin struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Entry is one audit record. UserID is nil for system events and for entries
// that were anonymized after an erasure.
type Entry struct {
	ID         string         `json:"id"`
	UserID     *string        `json:"userId,omitempty"`
	Action     Action         `json:"action"`
	EntityType string         `json:"entityType,omitempty"`
	EntityID   string         `json:"entityId,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Origin     Origin         `json:"origin"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Query filters audit listings. Zero fields match everything; Limit zero
// means the default page size.
type Query struct {
	UserID     string
	Action     Action
	EntityType string
	EntityID   string
	Limit      int
}

// DefaultLimit bounds a single audit page.
const DefaultLimit = 100
