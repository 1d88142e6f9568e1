package document

import "time"

// Category is the closed set of document categories. Each category carries
// its own whitelist of permitted MIME types.
type Category string

const (
	CategoryKYCIdentity       Category = "KYC_IDENTITY"
	CategoryKYCProofOfAddress Category = "KYC_PROOF_OF_ADDRESS"
	CategoryKYCBankStatement  Category = "KYC_BANK_STATEMENT"
	CategoryContract          Category = "CONTRACT"
	CategoryOther             Category = "OTHER"
)

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if _, ok := categoryWhitelist[c]; !ok {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Document is the metadata record for one stored blob. Ownership is
// exclusive and never transfers.
type Document struct {
	ID          string
	OwnerID     string
	Name        string
	Category    Category
	BlobName    string
	Size        int64
	MIMEType    string
	Description string
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Metadata keys recorded at upload time.
const (
	MetaOriginalName = "originalName"
	MetaUploadedAt   = "uploadedAt"
)
