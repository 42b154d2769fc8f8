package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements ProfilesRepo on Postgres. Profile data lives in a
// single jsonb column; section writes use jsonb_set so untouched
// sections keep their stored value.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new profile document.
func (r *PGRepo) Create(ctx context.Context, doc ProfileDoc) error {
	const query = `
INSERT INTO profiles (id, user_id, name, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)`

	payload, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("marshal profile data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query, doc.ID, doc.UserID, doc.Name, payload, doc.CreatedAt)
	return err
}

// GetByID fetches a profile by ID and verifies ownership.
func (r *PGRepo) GetByID(ctx context.Context, userID, profileID string) (ProfileDoc, error) {
	const query = `
SELECT id, user_id, name, data, created_at, updated_at
FROM profiles
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`

	var doc ProfileDoc
	var payload []byte
	err := r.DB.QueryRowContext(ctx, query, profileID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Name,
		&payload,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProfileDoc{}, ErrNotFound
		}
		return ProfileDoc{}, err
	}
	if doc.UserID != userID {
		return ProfileDoc{}, ErrUnauthorized
	}
	if err := json.Unmarshal(payload, &doc.Data); err != nil {
		return ProfileDoc{}, fmt.Errorf("unmarshal profile data: %w", err)
	}
	return doc, nil
}

// ListByUser returns the user's profiles, oldest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]ProfileDoc, error) {
	const query = `
SELECT id, user_id, name, data, created_at, updated_at
FROM profiles
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProfileDoc
	for rows.Next() {
		var doc ProfileDoc
		var payload []byte
		if err := rows.Scan(&doc.ID, &doc.UserID, &doc.Name, &payload, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &doc.Data); err != nil {
			return nil, fmt.Errorf("unmarshal profile data: %w", err)
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Rename updates the display name.
func (r *PGRepo) Rename(ctx context.Context, userID, profileID, name string) error {
	const query = `
UPDATE profiles
SET name = $3, updated_at = now()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`

	res, err := r.DB.ExecContext(ctx, query, userID, profileID, name)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ReplaceData overwrites the whole profile document (last-writer-wins).
func (r *PGRepo) ReplaceData(ctx context.Context, userID, profileID string, data ProfileData) error {
	const query = `
UPDATE profiles
SET data = $3, updated_at = now()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal profile data: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, userID, profileID, payload)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ReplaceSection overwrites one section of the document. The section
// name comes from the closed set, never from request input.
func (r *PGRepo) ReplaceSection(ctx context.Context, userID, profileID string, section Section, data ProfileData) error {
	if !ValidSection(section) {
		return ErrInvalidSection
	}
	const query = `
UPDATE profiles
SET data = jsonb_set(data, $3::text[], $4::jsonb), updated_at = now()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`

	payload, err := json.Marshal(sectionValue(data, section))
	if err != nil {
		return fmt.Errorf("marshal section %s: %w", section, err)
	}
	path := "{" + string(section) + "}"
	res, err := r.DB.ExecContext(ctx, query, userID, profileID, path, payload)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete soft-deletes a profile.
func (r *PGRepo) Delete(ctx context.Context, userID, profileID string) error {
	const query = `
UPDATE profiles
SET deleted_at = now()
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`

	res, err := r.DB.ExecContext(ctx, query, userID, profileID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ProfilesRepo = (*PGRepo)(nil)
