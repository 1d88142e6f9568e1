package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"securevault.org/internal/blob"
)

type stubShares struct {
	rows    map[string][]string // documentID -> grantee IDs
	removed []string
}

func newStubShares() *stubShares {
	return &stubShares{rows: make(map[string][]string)}
}

func (s *stubShares) Exists(_ context.Context, documentID, userID string) (bool, error) {
	for _, g := range s.rows[documentID] {
		if g == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubShares) RemoveForDocument(_ context.Context, documentID string) error {
	s.removed = append(s.removed, documentID)
	delete(s.rows, documentID)
	return nil
}

func newTestService(t *testing.T) (*Service, *stubShares, *blob.Store) {
	t.Helper()
	blobs, err := blob.New(t.TempDir())
	if err != nil {
		t.Fatalf("blob.New: %v", err)
	}
	shares := newStubShares()
	svc := NewService(NewInMemory(), blobs, shares,
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }))
	return svc, shares, blobs
}

func uploadPDF(t *testing.T, svc *Service, owner string) *Document {
	t.Helper()
	d, err := svc.Upload(context.Background(), UploadInput{
		OwnerID:      owner,
		OriginalName: "statement.pdf",
		Category:     CategoryKYCBankStatement,
		DeclaredMIME: "application/pdf",
		Data:         pdfBytes(128),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return d
}

func TestUploadStoresBlobAndMetadata(t *testing.T) {
	svc, _, blobs := newTestService(t)
	d := uploadPDF(t, svc, "owner-1")

	if d.Name != "statement.pdf" {
		t.Fatalf("Name = %q, want original filename fallback", d.Name)
	}
	if !strings.HasSuffix(d.BlobName, ".pdf") {
		t.Fatalf("BlobName = %q, want .pdf extension", d.BlobName)
	}
	if d.Metadata[MetaOriginalName] != "statement.pdf" {
		t.Fatalf("Metadata[%s] = %q", MetaOriginalName, d.Metadata[MetaOriginalName])
	}
	rc, err := blobs.Open(d.BlobName)
	if err != nil {
		t.Fatalf("Open blob: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if int64(len(data)) != d.Size {
		t.Fatalf("blob size = %d, recorded size = %d", len(data), d.Size)
	}
}

func TestUploadRejectsInvalidFileWithoutBlob(t *testing.T) {
	svc, _, blobs := newTestService(t)
	_, err := svc.Upload(context.Background(), UploadInput{
		OwnerID:      "owner-1",
		OriginalName: "sneaky.pdf",
		Category:     CategoryContract,
		DeclaredMIME: "application/pdf",
		Data:         pngBytes(),
	})
	if !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("err = %v, want ErrInvalidFile", err)
	}
	// Nothing should have reached disk.
	if _, err := blobs.Open("anything"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("unexpected blob state: %v", err)
	}
}

func TestGetAllowsOwnerAndGrantees(t *testing.T) {
	svc, shares, _ := newTestService(t)
	d := uploadPDF(t, svc, "owner-1")

	if _, err := svc.Get(context.Background(), d.ID, "owner-1"); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), d.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger Get: err = %v, want ErrForbidden", err)
	}

	shares.rows[d.ID] = []string{"grantee-1"}
	if _, err := svc.Get(context.Background(), d.ID, "grantee-1"); err != nil {
		t.Fatalf("grantee Get: %v", err)
	}
}

func TestGetUnknownDocument(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Get(context.Background(), "missing", "anyone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteIsOwnerOnlyAndCascades(t *testing.T) {
	svc, shares, blobs := newTestService(t)
	d := uploadPDF(t, svc, "owner-1")
	shares.rows[d.ID] = []string{"grantee-1"}

	if err := svc.Delete(context.Background(), d.ID, "grantee-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("grantee Delete: err = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), d.ID, "owner-1"); err != nil {
		t.Fatalf("owner Delete: %v", err)
	}
	if len(shares.removed) != 1 || shares.removed[0] != d.ID {
		t.Fatalf("share cascade = %v, want [%s]", shares.removed, d.ID)
	}
	if _, err := blobs.Open(d.BlobName); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("blob survived delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), d.ID, "owner-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("document survived delete: %v", err)
	}
}

func TestEraseOwnerRemovesEverything(t *testing.T) {
	svc, shares, blobs := newTestService(t)
	d1 := uploadPDF(t, svc, "owner-1")
	d2 := uploadPDF(t, svc, "owner-1")
	keep := uploadPDF(t, svc, "owner-2")
	shares.rows[d1.ID] = []string{"grantee-1"}

	if err := svc.EraseOwner(context.Background(), "owner-1"); err != nil {
		t.Fatalf("EraseOwner: %v", err)
	}
	for _, id := range []string{d1.ID, d2.ID} {
		if _, err := svc.Get(context.Background(), id, "owner-1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("document %s survived erase: %v", id, err)
		}
	}
	if _, err := blobs.Open(d1.BlobName); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("blob survived erase: %v", err)
	}
	if _, err := svc.Get(context.Background(), keep.ID, "owner-2"); err != nil {
		t.Fatalf("unrelated owner's document was erased: %v", err)
	}
}
