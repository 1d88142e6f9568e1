package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGStore stores document metadata in PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const documentColumns = `id, owner_id, name, category, blob_name, size, mime_type, description, metadata, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, d *Document) error {
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return fmt.Errorf("document: marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into documents (id, owner_id, name, category, blob_name, size, mime_type, description, metadata, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, d.ID, d.OwnerID, d.Name, string(d.Category), d.BlobName, d.Size, d.MIMEType, d.Description, meta, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("document: insert: %w", err)
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `select `+documentColumns+` from documents where id = $1`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("document: find: %w", err)
	}
	return d, nil
}

func (s *PGStore) ListByOwner(ctx context.Context, ownerID string) ([]*Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+documentColumns+` from documents
		where owner_id = $1
		order by created_at desc
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("document: list: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("document: list scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("document: list rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from documents where id = $1`, id)
	if err != nil {
		return fmt.Errorf("document: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("document: delete rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx, `delete from documents where owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("document: delete by owner: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		d        Document
		category string
		desc     sql.NullString
		meta     []byte
		created  time.Time
		updated  time.Time
	)
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &category, &d.BlobName, &d.Size, &d.MIMEType, &desc, &meta, &created, &updated)
	if err != nil {
		return nil, err
	}
	d.Category = Category(category)
	d.Description = desc.String
	d.CreatedAt = created.UTC()
	d.UpdatedAt = updated.UTC()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &d, nil
}
