package audit

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("audit: not found")

// Store persists audit entries. The log is append-only: entries are never
// updated except by Anonymize, which strips personal data in place.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	// List returns entries matching the query, newest first.
	List(ctx context.Context, q Query) ([]*Entry, error)
	// Anonymize detaches a user from their entries, replacing details with an
	// anonymization marker. Returns the number of entries touched.
	Anonymize(ctx context.Context, userID string, now time.Time) (int64, error)
}

// anonymizationMarker replaces an entry's details once its user is erased.
// The original id stays in the marker so regulators can still correlate the
// trail with an erasure request.
func anonymizationMarker(userID string, now time.Time) map[string]any {
	return map[string]any{
		"anonymized":     true,
		"originalUserId": userID,
		"anonymizedAt":   now.Format(time.RFC3339),
	}
}
