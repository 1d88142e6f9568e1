package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"securevault.org/internal/obs"
)

// MaxFileSize bounds uploads at 10 MiB.
const MaxFileSize = 10 << 20

const (
	mimePDF  = "application/pdf"
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// categoryWhitelist fixes the MIME types permitted per category.
var categoryWhitelist = map[Category][]string{
	CategoryKYCIdentity:       {mimeJPEG, mimePNG, "image/jpg", mimePDF},
	CategoryKYCProofOfAddress: {mimeJPEG, mimePNG, "image/jpg", mimePDF},
	CategoryKYCBankStatement:  {mimePDF, mimeJPEG, mimePNG},
	CategoryContract:          {mimePDF, mimeDOC, mimeDOCX},
	CategoryOther:             {mimePDF, mimeJPEG, mimePNG, mimeDOC, mimeDOCX},
}

// AllowedTypes returns the whitelist for a category.
func AllowedTypes(c Category) []string {
	return categoryWhitelist[c]
}

// NormalizeMIME folds aliases so image/jpg and image/jpeg compare equal, and
// strips any parameters a detector may attach.
func NormalizeMIME(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "image/jpg" {
		return mimeJPEG
	}
	return mt
}

// Magic-byte signatures checked in priority order before falling back to
// generic sniffing.
var (
	sigPDF  = []byte("%PDF")
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47}
	sigZIP1 = []byte{0x50, 0x4B, 0x03, 0x04}
	sigZIP2 = []byte{0x50, 0x4B, 0x05, 0x06}
	sigOLE  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectMIME inspects the leading bytes against known signatures, falling
// back to a generic content sniffer. Returns "" when the real type cannot be
// determined.
func DetectMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, sigPDF):
		return mimePDF
	case bytes.HasPrefix(data, sigJPEG):
		return mimeJPEG
	case bytes.HasPrefix(data, sigPNG):
		return mimePNG
	case bytes.HasPrefix(data, sigZIP1) || bytes.HasPrefix(data, sigZIP2):
		// OOXML containers are ZIP archives; the content-types part sits in
		// the first block of real Word documents.
		head := data
		if len(head) > 1024 {
			head = head[:1024]
		}
		if bytes.Contains(head, []byte("[Content_Types].xml")) {
			return mimeDOCX
		}
	case bytes.HasPrefix(data, sigOLE):
		return mimeDOC
	}

	detected := NormalizeMIME(mimetype.Detect(data).String())
	if detected == "" || detected == "application/octet-stream" {
		return ""
	}
	return detected
}

// Verify enforces the upload trust boundary: size bounds first (cheap,
// avoids scanning oversized hostile input), declared-type whitelist second,
// byte-level detection last. The declared type must agree with what the
// bytes actually are.
func Verify(data []byte, declaredMIME string, category Category) error {
	allowed, ok := categoryWhitelist[category]
	if !ok {
		return ErrInvalidCategory
	}

	if len(data) == 0 || int64(len(data)) > MaxFileSize {
		obs.CountUploadRejected("size")
		return fmt.Errorf("%w: file size must be between 1 byte and %d MB", ErrInvalidFile, MaxFileSize/(1<<20))
	}

	if !contains(allowed, declaredMIME) {
		obs.CountUploadRejected("declared_type")
		return fmt.Errorf("%w: type %s not allowed for %s (allowed: %s)",
			ErrInvalidFile, declaredMIME, category, strings.Join(allowed, ", "))
	}

	detected := DetectMIME(data)
	if detected == "" {
		obs.CountUploadRejected("undetectable")
		return fmt.Errorf("%w: cannot determine real file type", ErrInvalidFile)
	}

	if NormalizeMIME(declaredMIME) != detected {
		obs.CountUploadRejected("mismatch")
		return fmt.Errorf("%w: declared as %s but is actually %s - possibly malicious",
			ErrInvalidFile, declaredMIME, detected)
	}

	if !containsNormalized(allowed, detected) {
		obs.CountUploadRejected("detected_type")
		return fmt.Errorf("%w: detected type %s not allowed for %s", ErrInvalidFile, detected, category)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsNormalized(list []string, v string) bool {
	for _, item := range list {
		if NormalizeMIME(item) == v {
			return true
		}
	}
	return false
}
