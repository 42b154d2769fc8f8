package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	provider := doc.StorageProvider
	if provider == "" {
		provider = "local"
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.MimeType,
		doc.SizeBytes,
		provider,
		nullableString(doc.StorageKey),
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
FROM documents
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID, documentID))
}

// GetCurrentByUser returns the latest document for a user.
func (r *PGRepo) GetCurrentByUser(ctx context.Context, userID string) (Document, error) {
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
FROM documents
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at
FROM documents
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete soft-deletes a document.
func (r *PGRepo) Delete(ctx context.Context, userID, documentID string) error {
	const query = `
UPDATE documents
SET deleted_at = now()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, userID, documentID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Document, error) {
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var mimeType sql.NullString
	var provider sql.NullString
	var storageKey sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&mimeType,
		&doc.SizeBytes,
		&provider,
		&storageKey,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if mimeType.Valid {
		doc.MimeType = mimeType.String
	}
	if provider.Valid {
		doc.StorageProvider = provider.String
	}
	if storageKey.Valid {
		doc.StorageKey = storageKey.String
	}
	return doc, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ DocumentsRepo = (*PGRepo)(nil)
