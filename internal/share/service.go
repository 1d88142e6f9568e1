package share

import (
	"context"
	"errors"
	"fmt"
	"time"

	"securevault.org/internal/auth"
	"securevault.org/internal/document"
	"securevault.org/internal/ids"
)

// DocumentFinder resolves document metadata for ownership checks.
type DocumentFinder interface {
	Find(ctx context.Context, id string) (*document.Document, error)
}

// UserFinder resolves accounts for grantee validation and listing summaries.
type UserFinder interface {
	Find(ctx context.Context, id string) (*auth.User, error)
}

// GrantInput carries one grant or re-grant request.
type GrantInput struct {
	GranteeID  string
	Permission Permission
	ExpiresAt  *time.Time
}

// Service implements sharing. Every operation that mutates or lists shares
// for a document requires the caller to own that document.
type Service struct {
	store Store
	docs  DocumentFinder
	users UserFinder
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, docs DocumentFinder, users UserFinder, opts ...Option) *Service {
	s := &Service{
		store: store,
		docs:  docs,
		users: users,
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Grant shares a document with another user. Granting the same pair again
// overwrites permission and expiry on the existing row.
func (s *Service) Grant(ctx context.Context, ownerID, documentID string, in GrantInput) (*View, error) {
	doc, err := s.ownedDocument(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	if in.GranteeID == doc.OwnerID {
		return nil, ErrSelfShare
	}
	grantee, err := s.users.Find(ctx, in.GranteeID)
	if errors.Is(err, auth.ErrNotFound) {
		return nil, ErrUnknownGrantee
	}
	if err != nil {
		return nil, fmt.Errorf("share: grantee lookup: %w", err)
	}

	now := s.now().UTC()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, ErrExpiryInPast
	}

	sh := &Share{
		ID:         ids.New(),
		DocumentID: documentID,
		GranteeID:  in.GranteeID,
		Permission: in.Permission,
		ExpiresAt:  in.ExpiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Upsert(ctx, sh); err != nil {
		return nil, err
	}
	return s.view(sh, grantee, now), nil
}

// Revoke removes a share from a document the caller owns.
func (s *Service) Revoke(ctx context.Context, ownerID, documentID, shareID string) error {
	sh, err := s.ownedShare(ctx, ownerID, documentID, shareID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, sh.ID)
}

// UpdatePermission changes the access level of an existing share.
func (s *Service) UpdatePermission(ctx context.Context, ownerID, documentID, shareID string, p Permission) (*View, error) {
	sh, err := s.ownedShare(ctx, ownerID, documentID, shareID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	sh.Permission = p
	sh.UpdatedAt = now
	if err := s.store.Upsert(ctx, sh); err != nil {
		return nil, err
	}
	grantee, err := s.users.Find(ctx, sh.GranteeID)
	if err != nil {
		return nil, fmt.Errorf("share: grantee lookup: %w", err)
	}
	return s.view(sh, grantee, now), nil
}

// ListForDocument returns every share on a document the caller owns, expired
// ones included and flagged.
func (s *Service) ListForDocument(ctx context.Context, ownerID, documentID string) ([]*View, error) {
	if _, err := s.ownedDocument(ctx, ownerID, documentID); err != nil {
		return nil, err
	}
	shares, err := s.store.ListForDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	views := make([]*View, 0, len(shares))
	for _, sh := range shares {
		grantee, err := s.users.Find(ctx, sh.GranteeID)
		if err != nil {
			return nil, fmt.Errorf("share: grantee lookup: %w", err)
		}
		views = append(views, s.view(sh, grantee, now))
	}
	return views, nil
}

// SharedWithMe returns the documents currently shared with the caller.
// Expired shares are filtered out here even though they still allow direct
// access by id.
func (s *Service) SharedWithMe(ctx context.Context, userID string) ([]*SharedDocument, error) {
	now := s.now().UTC()
	shares, err := s.store.ListActiveForGrantee(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	out := make([]*SharedDocument, 0, len(shares))
	for _, sh := range shares {
		doc, err := s.docs.Find(ctx, sh.DocumentID)
		if errors.Is(err, document.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("share: document lookup: %w", err)
		}
		owner, err := s.users.Find(ctx, doc.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("share: owner lookup: %w", err)
		}
		out = append(out, &SharedDocument{
			ShareID:    sh.ID,
			DocumentID: doc.ID,
			Name:       doc.Name,
			Category:   string(doc.Category),
			MIMEType:   doc.MIMEType,
			Size:       doc.Size,
			Owner:      summary(owner),
			Permission: sh.Permission,
			ExpiresAt:  sh.ExpiresAt,
			SharedAt:   sh.CreatedAt,
		})
	}
	return out, nil
}

// Exists implements the document package's direct-access check.
func (s *Service) Exists(ctx context.Context, documentID, userID string) (bool, error) {
	return s.store.Exists(ctx, documentID, userID)
}

// RemoveForDocument implements the document package's deletion cascade.
func (s *Service) RemoveForDocument(ctx context.Context, documentID string) error {
	return s.store.RemoveForDocument(ctx, documentID)
}

// RemoveForGrantee drops every share granted to a user. Used by the erase
// flow.
func (s *Service) RemoveForGrantee(ctx context.Context, granteeID string) error {
	return s.store.RemoveForGrantee(ctx, granteeID)
}

func (s *Service) ownedDocument(ctx context.Context, ownerID, documentID string) (*document.Document, error) {
	doc, err := s.docs.Find(ctx, documentID)
	if errors.Is(err, document.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("share: document lookup: %w", err)
	}
	if doc.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return doc, nil
}

func (s *Service) ownedShare(ctx context.Context, ownerID, documentID, shareID string) (*Share, error) {
	if _, err := s.ownedDocument(ctx, ownerID, documentID); err != nil {
		return nil, err
	}
	sh, err := s.store.Find(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if sh.DocumentID != documentID {
		return nil, ErrDocumentMismatch
	}
	return sh, nil
}

func (s *Service) view(sh *Share, grantee *auth.User, now time.Time) *View {
	return &View{
		ID:         sh.ID,
		DocumentID: sh.DocumentID,
		Grantee:    summary(grantee),
		Permission: sh.Permission,
		ExpiresAt:  sh.ExpiresAt,
		IsExpired:  sh.Expired(now),
		CreatedAt:  sh.CreatedAt,
	}
}

func summary(u *auth.User) UserSummary {
	return UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
