package document

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"securevault.org/internal/ids"
	"securevault.org/internal/obs"
)

// BlobStore is the piece of blob storage the service uses.
type BlobStore interface {
	Write(name string, data []byte) (string, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}

// UploadInput carries one incoming file plus its declared attributes.
type UploadInput struct {
	OwnerID      string
	Name         string
	OriginalName string
	Category     Category
	DeclaredMIME string
	Description  string
	Data         []byte
}

// Service implements document ingestion, retrieval and deletion.
type Service struct {
	store  Store
	blobs  BlobStore
	shares ShareAccess
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, blobs BlobStore, shares ShareAccess, opts ...Option) *Service {
	s := &Service{
		store:  store,
		blobs:  blobs,
		shares: shares,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Upload verifies the file content against its declared type and category,
// writes the blob, then records metadata. The blob is written first; if the
// metadata insert fails the blob is removed best-effort, so the worst case
// is an orphaned blob, never a metadata row without content.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*Document, error) {
	if in.Name == "" {
		in.Name = in.OriginalName
	}
	if err := Verify(in.Data, in.DeclaredMIME, in.Category); err != nil {
		return nil, err
	}

	blobName := uuid.NewString()
	if ext := filepath.Ext(in.OriginalName); ext != "" {
		blobName += strings.ToLower(ext)
	}
	if _, err := s.blobs.Write(blobName, in.Data); err != nil {
		return nil, fmt.Errorf("document: write blob: %w", err)
	}

	now := s.now().UTC()
	d := &Document{
		ID:          ids.New(),
		OwnerID:     in.OwnerID,
		Name:        in.Name,
		Category:    in.Category,
		BlobName:    blobName,
		Size:        int64(len(in.Data)),
		MIMEType:    NormalizeMIME(in.DeclaredMIME),
		Description: in.Description,
		Metadata: map[string]string{
			MetaOriginalName: in.OriginalName,
			MetaUploadedAt:   now.Format(time.RFC3339),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, d); err != nil {
		if rmErr := s.blobs.Remove(blobName); rmErr != nil {
			obs.LogError("blob cleanup failed", map[string]any{"blob": blobName, "error": rmErr.Error()})
		}
		return nil, err
	}
	return d, nil
}

// Get returns the document if the caller owns it or any share row grants it.
// The share check does not consider expiry: an expired share keeps granting
// direct reads until it is revoked.
func (s *Service) Get(ctx context.Context, id, userID string) (*Document, error) {
	d, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID == userID {
		return d, nil
	}
	shared, err := s.shares.Exists(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("document: share lookup: %w", err)
	}
	if !shared {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Document, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Open returns the document plus a reader over its content, applying the
// same access rule as Get.
func (s *Service) Open(ctx context.Context, id, userID string) (*Document, io.ReadCloser, error) {
	d, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(d.BlobName)
	if err != nil {
		return nil, nil, fmt.Errorf("document: open blob: %w", err)
	}
	return d, rc, nil
}

// Delete removes a document the caller owns, cascading its shares and
// unlinking the blob best-effort.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	d, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if d.OwnerID != userID {
		return ErrForbidden
	}
	if err := s.shares.RemoveForDocument(ctx, id); err != nil {
		return fmt.Errorf("document: cascade shares: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Remove(d.BlobName); err != nil {
		obs.LogError("blob cleanup failed", map[string]any{"blob": d.BlobName, "error": err.Error()})
	}
	return nil
}

// EraseOwner removes every document a user owns, shares and blobs included.
// Used by the GDPR erase flow, which runs with no acting principal.
func (s *Service) EraseOwner(ctx context.Context, ownerID string) error {
	docs, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := s.shares.RemoveForDocument(ctx, d.ID); err != nil {
			return fmt.Errorf("document: cascade shares: %w", err)
		}
		if err := s.blobs.Remove(d.BlobName); err != nil {
			obs.LogError("blob cleanup failed", map[string]any{"blob": d.BlobName, "error": err.Error()})
		}
	}
	return s.store.DeleteByOwner(ctx, ownerID)
}
