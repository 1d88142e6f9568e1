package share

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreUpsertKeepsExistingRowIdentity(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`insert into document_shares .+ on conflict \(document_id, grantee_id\) do update`).
		WithArgs("new-id", "doc-1", "grantee-1", "READ_WRITE", nil, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing-id", created))

	sh := &Share{
		ID:         "new-id",
		DocumentID: "doc-1",
		GranteeID:  "grantee-1",
		Permission: PermissionReadWrite,
		UpdatedAt:  now,
	}
	if err := NewPGStore(db).Upsert(context.Background(), sh); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if sh.ID != "existing-id" {
		t.Fatalf("ID = %q, want surviving row id", sh.ID)
	}
	if !sh.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want original creation time", sh.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`delete from document_shares where id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPGStore(db).Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
