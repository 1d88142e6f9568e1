package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"securevault.org/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Users() UserStore { return &userStore{db: s.db} }
func (s *PGStore) OTP() OTPStore    { return &otpStore{db: s.db} }

// User store ----------------------------------------------------------------

type userStore struct{ db *sql.DB }

const userColumns = `id, email, password_hash, first_name, last_name, role, active, created_at, updated_at`

func (s *userStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, password_hash, first_name, last_name, role, active)
		 values($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Role, u.Active,
	)
	return err
}

func (s *userStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id=$1`, id)
	return scanUser(row)
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where email=$1`, email)
	return scanUser(row)
}

func (s *userStore) UpdateName(ctx context.Context, id string, firstName, lastName *string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`update users
		 set first_name = coalesce($2, first_name),
		     last_name  = coalesce($3, last_name),
		     updated_at = now()
		 where id=$1
		 returning `+userColumns,
		id, firstName, lastName,
	)
	return scanUser(row)
}

func (s *userStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u     User
		first sql.NullString
		last  sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &first, &last, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.FirstName = first.String
	u.LastName = last.String
	return &u, nil
}

// OTP store -----------------------------------------------------------------

type otpStore struct{ db *sql.DB }

func (s *otpStore) Create(ctx context.Context, code *OTPCode) error {
	if code.ID == "" {
		code.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into otp_codes(id, user_id, code, used, expires_at)
		 values($1,$2,$3,false,$4)`,
		code.ID, code.UserID, code.Code, code.ExpiresAt,
	)
	return err
}

func (s *otpStore) PurgeStale(ctx context.Context, userID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`delete from otp_codes where user_id=$1 and (expires_at < $2 or used = true)`,
		userID, now,
	)
	return err
}

func (s *otpStore) Consume(ctx context.Context, userID, code string, now time.Time) error {
	// Match and flip in one statement: the inner select picks the newest
	// candidate, the outer update only succeeds while used is still false.
	res, err := s.db.ExecContext(ctx,
		`update otp_codes set used = true
		 where used = false and id = (
			select id from otp_codes
			where user_id=$1 and code=$2 and used=false and expires_at >= $3
			order by created_at desc
			limit 1
		 )`,
		userID, code, now,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
