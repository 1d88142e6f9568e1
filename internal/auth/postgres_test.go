package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestOTPConsumeFlipsExactlyOneRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("update otp_codes set used = true").
		WithArgs("user-1", "123456", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPGStore(db)
	if err := store.OTP().Consume(context.Background(), "user-1", "123456", now); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOTPConsumeReportsNotFoundWhenNoRowMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("update otp_codes set used = true").
		WithArgs("user-1", "000000", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPGStore(db)
	err = store.OTP().Consume(context.Background(), "user-1", "000000", now)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserFindByEmailMapsNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select .* from users where email=").
		WithArgs("ghost@vault.test").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	store := NewPGStore(db)
	_, err = store.Users().FindByEmail(context.Background(), "ghost@vault.test")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserUpdateNameScansUpdatedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Now().UTC().Add(-time.Hour)
	first := "Grace"
	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "role", "active", "created_at", "updated_at",
	}).AddRow("user-1", "grace@vault.test", "hash", "Grace", "Hopper", "USER", true, created, time.Now().UTC())

	mock.ExpectQuery("update users").
		WithArgs("user-1", "Grace", nil).
		WillReturnRows(rows)

	store := NewPGStore(db)
	u, err := store.Users().UpdateName(context.Background(), "user-1", &first, nil)
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if u.FirstName != "Grace" || u.LastName != "Hopper" {
		t.Fatalf("unexpected user: %+v", u)
	}
}
