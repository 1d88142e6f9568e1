package gdpr

import (
	"time"

	"securevault.org/internal/audit"
	"securevault.org/internal/auth"
	"securevault.org/internal/document"
	"securevault.org/internal/share"
)

// ConsentType is the closed set of consent purposes.
type ConsentType string

const (
	ConsentDataProcessing    ConsentType = "DATA_PROCESSING"
	ConsentMarketing         ConsentType = "MARKETING"
	ConsentAnalytics         ConsentType = "ANALYTICS"
	ConsentThirdPartySharing ConsentType = "THIRD_PARTY_SHARING"
)

// ParseConsentType validates a raw consent type string.
func ParseConsentType(raw string) (ConsentType, error) {
	switch t := ConsentType(raw); t {
	case ConsentDataProcessing, ConsentMarketing, ConsentAnalytics, ConsentThirdPartySharing:
		return t, nil
	default:
		return "", ErrInvalidConsentType
	}
}

// Consent records a user's current decision for one purpose. The pair
// (UserID, Type) is unique; granting or revoking updates the row in place.
type Consent struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Type      ConsentType `json:"consentType"`
	Granted   bool        `json:"granted"`
	GrantedAt *time.Time  `json:"grantedAt,omitempty"`
	RevokedAt *time.Time  `json:"revokedAt,omitempty"`
	IP        string      `json:"ipAddress,omitempty"`
	UserAgent string      `json:"userAgent,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// DocumentRecord is the metadata slice of a document included in an export.
// Blob content stays out of the bundle.
type DocumentRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	MIMEType    string            `json:"mimeType"`
	Size        int64             `json:"size"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// ExportBundle is everything the vault holds about one user.
type ExportBundle struct {
	GeneratedAt    time.Time               `json:"generatedAt"`
	Profile        auth.UserSummary        `json:"profile"`
	Documents      []DocumentRecord        `json:"documents"`
	SharesGranted  []*share.View           `json:"sharesGranted"`
	SharesReceived []*share.SharedDocument `json:"sharesReceived"`
	Consents       []*Consent              `json:"consents"`
	AuditTrail     []*audit.Entry          `json:"auditTrail"`
}

func documentRecord(d *document.Document) DocumentRecord {
	return DocumentRecord{
		ID:          d.ID,
		Name:        d.Name,
		Category:    string(d.Category),
		MIMEType:    d.MIMEType,
		Size:        d.Size,
		Description: d.Description,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
	}
}

// exportAuditLimit bounds the audit slice of an export bundle.
const exportAuditLimit = 1000
