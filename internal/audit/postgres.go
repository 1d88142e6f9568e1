package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PGStore stores audit entries in PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Append(ctx context.Context, e *Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("audit: marshal details: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into audit_logs (id, user_id, action, entity_type, entity_id, details, ip, user_agent, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.UserID, string(e.Action), nullIfEmpty(e.EntityType), nullIfEmpty(e.EntityID),
		details, nullIfEmpty(e.Origin.IP), nullIfEmpty(e.Origin.UserAgent), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit: append: %w", err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, q Query) ([]*Entry, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if q.UserID != "" {
		add("user_id = $%d", q.UserID)
	}
	if q.Action != "" {
		add("action = $%d", string(q.Action))
	}
	if q.EntityType != "" {
		add("entity_type = $%d", q.EntityType)
	}
	if q.EntityID != "" {
		add("entity_id = $%d", q.EntityID)
	}

	query := `select id, user_id, action, entity_type, entity_id, details, ip, user_agent, created_at from audit_logs`
	if len(where) > 0 {
		query += ` where ` + strings.Join(where, " and ")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(` order by created_at desc limit $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: list: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) Anonymize(ctx context.Context, userID string, now time.Time) (int64, error) {
	marker, err := json.Marshal(anonymizationMarker(userID, now))
	if err != nil {
		return 0, fmt.Errorf("audit: marshal marker: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		update audit_logs
		set user_id = null, details = $2
		where user_id = $1
	`, userID, marker)
	if err != nil {
		return 0, fmt.Errorf("audit: anonymize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("audit: anonymize rows affected: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e          Entry
		userID     sql.NullString
		entityType sql.NullString
		entityID   sql.NullString
		details    []byte
		ip         sql.NullString
		ua         sql.NullString
		action     string
		created    time.Time
	)
	if err := rows.Scan(&e.ID, &userID, &action, &entityType, &entityID, &details, &ip, &ua, &created); err != nil {
		return nil, err
	}
	if userID.Valid {
		v := userID.String
		e.UserID = &v
	}
	e.Action = Action(action)
	e.EntityType = entityType.String
	e.EntityID = entityID.String
	e.Origin = Origin{IP: ip.String, UserAgent: ua.String}
	e.CreatedAt = created.UTC()
	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return &e, nil
}
