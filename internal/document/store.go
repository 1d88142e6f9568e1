package document

import "context"

// Store manages document metadata rows.
type Store interface {
	Create(ctx context.Context, d *Document) error
	Find(ctx context.Context, id string) (*Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Document, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// ShareAccess is the slice of the share subsystem the document service
// needs: existence checks for the direct-access gate and cascade removal on
// document deletion. Defined here so this package stays import-cycle free.
type ShareAccess interface {
	// Exists reports whether any share row links the document to the user.
	// Deliberately expiry-blind: an expired but unrevoked share still
	// satisfies the direct-access check.
	Exists(ctx context.Context, documentID, userID string) (bool, error)
	RemoveForDocument(ctx context.Context, documentID string) error
}
