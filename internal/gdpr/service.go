package gdpr

import (
	"context"
	"fmt"
	"time"

	"securevault.org/internal/audit"
	"securevault.org/internal/auth"
	"securevault.org/internal/document"
	"securevault.org/internal/ids"
	"securevault.org/internal/share"
)

// UserDirectory is the slice of the auth store the coordinator needs.
type UserDirectory interface {
	Find(ctx context.Context, id string) (*auth.User, error)
	UpdateName(ctx context.Context, id string, firstName, lastName *string) (*auth.User, error)
	Delete(ctx context.Context, id string) error
}

// DocumentVault lists and erases a user's documents.
type DocumentVault interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*document.Document, error)
	EraseOwner(ctx context.Context, ownerID string) error
}

// ShareRegistry exposes the share views an export needs plus the grantee-side
// cascade for erasure.
type ShareRegistry interface {
	ListForDocument(ctx context.Context, ownerID, documentID string) ([]*share.View, error)
	SharedWithMe(ctx context.Context, userID string) ([]*share.SharedDocument, error)
	RemoveForGrantee(ctx context.Context, granteeID string) error
}

// RectifyInput carries the mutable profile fields. Nil pointers mean "leave
// as is".
type RectifyInput struct {
	FirstName *string
	LastName  *string
}

// Service coordinates the data-subject rights flows across every subsystem
// that holds personal data.
type Service struct {
	users    UserDirectory
	docs     DocumentVault
	shares   ShareRegistry
	consents ConsentStore
	auditor  *audit.Recorder
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(users UserDirectory, docs DocumentVault, shares ShareRegistry, consents ConsentStore, auditor *audit.Recorder, opts ...Option) *Service {
	s := &Service{
		users:    users,
		docs:     docs,
		shares:   shares,
		consents: consents,
		auditor:  auditor,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Export assembles everything the vault holds about the user. Blob content
// is excluded; documents appear as metadata records.
func (s *Service) Export(ctx context.Context, userID string, origin audit.Origin) (*ExportBundle, error) {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.docs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gdpr: export documents: %w", err)
	}
	records := make([]DocumentRecord, 0, len(docs))
	granted := make([]*share.View, 0)
	for _, d := range docs {
		records = append(records, documentRecord(d))
		views, err := s.shares.ListForDocument(ctx, userID, d.ID)
		if err != nil {
			return nil, fmt.Errorf("gdpr: export shares: %w", err)
		}
		granted = append(granted, views...)
	}

	received, err := s.shares.SharedWithMe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("gdpr: export received shares: %w", err)
	}
	consents, err := s.consents.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	trail, err := s.auditor.List(ctx, audit.Query{UserID: userID, Limit: exportAuditLimit})
	if err != nil {
		return nil, fmt.Errorf("gdpr: export audit trail: %w", err)
	}

	bundle := &ExportBundle{
		GeneratedAt: s.now().UTC(),
		Profile: auth.UserSummary{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		Documents:      records,
		SharesGranted:  granted,
		SharesReceived: received,
		Consents:       consents,
		AuditTrail:     trail,
	}

	s.auditor.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionDataExport,
		EntityType: audit.EntityUser,
		EntityID:   userID,
		Origin:     origin,
	})
	return bundle, nil
}

// Erase removes every trace of the user except the anonymized audit trail.
// Documents go first so their blobs and shares cascade while metadata still
// exists; the user row goes last. The closing DATA_DELETION event carries no
// user reference since the subject no longer exists.
func (s *Service) Erase(ctx context.Context, userID string, origin audit.Origin) error {
	if _, err := s.users.Find(ctx, userID); err != nil {
		return err
	}
	if err := s.docs.EraseOwner(ctx, userID); err != nil {
		return fmt.Errorf("gdpr: erase documents: %w", err)
	}
	if err := s.shares.RemoveForGrantee(ctx, userID); err != nil {
		return fmt.Errorf("gdpr: erase received shares: %w", err)
	}
	if err := s.consents.RemoveForUser(ctx, userID); err != nil {
		return err
	}
	anonymized, err := s.auditor.Anonymize(ctx, userID)
	if err != nil {
		return fmt.Errorf("gdpr: anonymize audit trail: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:     audit.ActionDataDeletion,
		EntityType: audit.EntityUser,
		EntityID:   userID,
		Details: map[string]any{
			"anonymizedEntries": anonymized,
		},
		Origin: origin,
	})
	return nil
}

// Rectify updates the mutable profile fields. The audit event names which
// fields changed but never their values.
func (s *Service) Rectify(ctx context.Context, userID string, in RectifyInput, origin audit.Origin) (*auth.User, error) {
	if in.FirstName == nil && in.LastName == nil {
		return nil, ErrNothingToRectify
	}
	user, err := s.users.UpdateName(ctx, userID, in.FirstName, in.LastName)
	if err != nil {
		return nil, err
	}

	var fields []string
	if in.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if in.LastName != nil {
		fields = append(fields, "lastName")
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionDataRectified,
		EntityType: audit.EntityUser,
		EntityID:   userID,
		Details:    map[string]any{"fields": fields},
		Origin:     origin,
	})
	return user, nil
}

// GrantConsent records a positive decision for one purpose, overwriting any
// earlier decision for the same pair.
func (s *Service) GrantConsent(ctx context.Context, userID string, t ConsentType, origin audit.Origin) (*Consent, error) {
	now := s.now().UTC()
	c := &Consent{
		ID:        ids.New(),
		UserID:    userID,
		Type:      t,
		Granted:   true,
		GrantedAt: &now,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
		UpdatedAt: now,
	}
	if err := s.consents.Upsert(ctx, c); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionConsentGranted,
		EntityType: audit.EntityConsent,
		EntityID:   c.ID,
		Details:    map[string]any{"consentType": string(t)},
		Origin:     origin,
	})
	return c, nil
}

// RevokeConsent records a negative decision for one purpose.
func (s *Service) RevokeConsent(ctx context.Context, userID string, t ConsentType, origin audit.Origin) (*Consent, error) {
	now := s.now().UTC()
	c := &Consent{
		ID:        ids.New(),
		UserID:    userID,
		Type:      t,
		Granted:   false,
		RevokedAt: &now,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
		UpdatedAt: now,
	}
	if err := s.consents.Upsert(ctx, c); err != nil {
		return nil, err
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     audit.ActionConsentRevoked,
		EntityType: audit.EntityConsent,
		EntityID:   c.ID,
		Details:    map[string]any{"consentType": string(t)},
		Origin:     origin,
	})
	return c, nil
}

// Consents lists the user's current decisions.
func (s *Service) Consents(ctx context.Context, userID string) ([]*Consent, error) {
	return s.consents.ListForUser(ctx, userID)
}
