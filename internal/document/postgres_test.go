package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreFindScansMetadata(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "name", "category", "blob_name", "size",
		"mime_type", "description", "metadata", "created_at", "updated_at",
	}).AddRow(
		"doc-1", "owner-1", "statement.pdf", "KYC_BANK_STATEMENT", "abc.pdf", int64(2048),
		"application/pdf", nil, []byte(`{"originalName":"statement.pdf"}`), now, now,
	)
	mock.ExpectQuery(`select .+ from documents where id = \$1`).
		WithArgs("doc-1").
		WillReturnRows(rows)

	d, err := NewPGStore(db).Find(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if d.Category != CategoryKYCBankStatement {
		t.Fatalf("Category = %q", d.Category)
	}
	if d.Metadata[MetaOriginalName] != "statement.pdf" {
		t.Fatalf("Metadata = %v", d.Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`delete from documents where id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewPGStore(db).Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
