package gdpr

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PGConsentStore stores consents in PostgreSQL.
type PGConsentStore struct {
	db *sql.DB
}

func NewPGConsentStore(db *sql.DB) *PGConsentStore {
	return &PGConsentStore{db: db}
}

func (s *PGConsentStore) Upsert(ctx context.Context, c *Consent) error {
	row := s.db.QueryRowContext(ctx, `
		insert into consents (id, user_id, consent_type, granted, granted_at, revoked_at, ip, user_agent, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		on conflict (user_id, consent_type) do update
		set granted = excluded.granted,
		    granted_at = excluded.granted_at,
		    revoked_at = excluded.revoked_at,
		    ip = excluded.ip,
		    user_agent = excluded.user_agent,
		    updated_at = excluded.updated_at
		returning id
	`, c.ID, c.UserID, string(c.Type), c.Granted, c.GrantedAt, c.RevokedAt,
		nullIfBlank(c.IP), nullIfBlank(c.UserAgent), c.UpdatedAt)
	if err := row.Scan(&c.ID); err != nil {
		return fmt.Errorf("gdpr: upsert consent: %w", err)
	}
	return nil
}

func (s *PGConsentStore) ListForUser(ctx context.Context, userID string) ([]*Consent, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, user_id, consent_type, granted, granted_at, revoked_at, ip, user_agent, updated_at
		from consents
		where user_id = $1
		order by consent_type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("gdpr: list consents: %w", err)
	}
	defer rows.Close()

	var out []*Consent
	for rows.Next() {
		var (
			c       Consent
			ctype   string
			granted sql.NullTime
			revoked sql.NullTime
			ip      sql.NullString
			ua      sql.NullString
			updated time.Time
		)
		if err := rows.Scan(&c.ID, &c.UserID, &ctype, &c.Granted, &granted, &revoked, &ip, &ua, &updated); err != nil {
			return nil, fmt.Errorf("gdpr: scan consent: %w", err)
		}
		c.Type = ConsentType(ctype)
		if granted.Valid {
			t := granted.Time.UTC()
			c.GrantedAt = &t
		}
		if revoked.Valid {
			t := revoked.Time.UTC()
			c.RevokedAt = &t
		}
		c.IP = ip.String
		c.UserAgent = ua.String
		c.UpdatedAt = updated.UTC()
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gdpr: consent rows: %w", err)
	}
	return out, nil
}

func nullIfBlank(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *PGConsentStore) RemoveForUser(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `delete from consents where user_id = $1`, userID); err != nil {
		return fmt.Errorf("gdpr: remove consents: %w", err)
	}
	return nil
}
