package jobads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo is a Postgres-backed job ad repository.
type PGRepo struct {
	DB *sql.DB
}

const adColumns = `id, user_id, COALESCE(source_url, ''), job_title, COALESCE(company_name, ''), COALESCE(posted_at, ''), COALESCE(location, ''), COALESCE(summary, ''), requirements, COALESCE(verbatim_text, ''), created_at`

func (r *PGRepo) Create(ctx context.Context, ad JobAd) error {
	requirements, err := json.Marshal(ad.Requirements)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO job_ads (id, user_id, source_url, job_title, company_name, posted_at, location, summary, requirements, verbatim_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ad.ID, ad.UserID, ad.SourceURL, ad.JobTitle, ad.CompanyName, ad.PostedAt,
		ad.Location, ad.Summary, requirements, ad.VerbatimText, ad.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, adID string) (JobAd, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+adColumns+`
		FROM job_ads
		WHERE id = $1 AND user_id = $2`,
		adID, userID,
	)
	return scanAd(row)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]JobAd, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+adColumns+`
		FROM job_ads
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := make([]JobAd, 0)
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, userID, adID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM job_ads WHERE id = $1 AND user_id = $2`,
		adID, userID,
	)
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

func scanAd(row rowScanner) (JobAd, error) {
	var ad JobAd
	var requirements []byte
	err := row.Scan(
		&ad.ID, &ad.UserID, &ad.SourceURL, &ad.JobTitle, &ad.CompanyName,
		&ad.PostedAt, &ad.Location, &ad.Summary, &requirements,
		&ad.VerbatimText, &ad.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return JobAd{}, ErrNotFound
	}
	if err != nil {
		return JobAd{}, err
	}
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &ad.Requirements); err != nil {
			return JobAd{}, err
		}
	}
	return ad, nil
}
