package share

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PGStore stores shares in PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const shareColumns = `id, document_id, grantee_id, permission, expires_at, created_at, updated_at`

func (s *PGStore) Upsert(ctx context.Context, sh *Share) error {
	row := s.db.QueryRowContext(ctx, `
		insert into document_shares (id, document_id, grantee_id, permission, expires_at, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $6)
		on conflict (document_id, grantee_id) do update
		set permission = excluded.permission,
		    expires_at = excluded.expires_at,
		    updated_at = excluded.updated_at
		returning id, created_at
	`, sh.ID, sh.DocumentID, sh.GranteeID, string(sh.Permission), sh.ExpiresAt, sh.UpdatedAt)
	var created time.Time
	if err := row.Scan(&sh.ID, &created); err != nil {
		return fmt.Errorf("share: upsert: %w", err)
	}
	sh.CreatedAt = created.UTC()
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*Share, error) {
	row := s.db.QueryRowContext(ctx, `select `+shareColumns+` from document_shares where id = $1`, id)
	sh, err := scanShare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("share: find: %w", err)
	}
	return sh, nil
}

func (s *PGStore) Exists(ctx context.Context, documentID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists (select 1 from document_shares where document_id = $1 and grantee_id = $2)
	`, documentID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("share: exists: %w", err)
	}
	return exists, nil
}

func (s *PGStore) ListForDocument(ctx context.Context, documentID string) ([]*Share, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+shareColumns+` from document_shares
		where document_id = $1
		order by created_at desc
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("share: list for document: %w", err)
	}
	return collectShares(rows)
}

func (s *PGStore) ListActiveForGrantee(ctx context.Context, granteeID string, now time.Time) ([]*Share, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+shareColumns+` from document_shares
		where grantee_id = $1 and (expires_at is null or expires_at > $2)
		order by created_at desc
	`, granteeID, now)
	if err != nil {
		return nil, fmt.Errorf("share: list for grantee: %w", err)
	}
	return collectShares(rows)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from document_shares where id = $1`, id)
	if err != nil {
		return fmt.Errorf("share: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("share: delete rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) RemoveForDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, `delete from document_shares where document_id = $1`, documentID); err != nil {
		return fmt.Errorf("share: remove for document: %w", err)
	}
	return nil
}

func (s *PGStore) RemoveForGrantee(ctx context.Context, granteeID string) error {
	if _, err := s.db.ExecContext(ctx, `delete from document_shares where grantee_id = $1`, granteeID); err != nil {
		return fmt.Errorf("share: remove for grantee: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShare(row rowScanner) (*Share, error) {
	var (
		sh         Share
		permission string
		expires    sql.NullTime
		created    time.Time
		updated    time.Time
	)
	err := row.Scan(&sh.ID, &sh.DocumentID, &sh.GranteeID, &permission, &expires, &created, &updated)
	if err != nil {
		return nil, err
	}
	sh.Permission = Permission(permission)
	if expires.Valid {
		t := expires.Time.UTC()
		sh.ExpiresAt = &t
	}
	sh.CreatedAt = created.UTC()
	sh.UpdatedAt = updated.UTC()
	return &sh, nil
}

func collectShares(rows *sql.Rows) ([]*Share, error) {
	defer rows.Close()
	var out []*Share
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("share: scan: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("share: rows: %w", err)
	}
	return out, nil
}
