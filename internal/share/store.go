package share

import (
	"context"
	"time"
)

// Store persists share rows. Upsert keys on (DocumentID, GranteeID): a
// second grant for the same pair updates permission and expiry and keeps the
// original row identity.
type Store interface {
	Upsert(ctx context.Context, s *Share) error
	Find(ctx context.Context, id string) (*Share, error)
	Exists(ctx context.Context, documentID, userID string) (bool, error)
	ListForDocument(ctx context.Context, documentID string) ([]*Share, error)
	ListActiveForGrantee(ctx context.Context, granteeID string, now time.Time) ([]*Share, error)
	Delete(ctx context.Context, id string) error
	RemoveForDocument(ctx context.Context, documentID string) error
	RemoveForGrantee(ctx context.Context, granteeID string) error
}
