package gdpr

import "context"

// ConsentStore persists consent decisions, keyed on (UserID, Type).
type ConsentStore interface {
	Upsert(ctx context.Context, c *Consent) error
	ListForUser(ctx context.Context, userID string) ([]*Consent, error)
	RemoveForUser(ctx context.Context, userID string) error
}
