package fragments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo is a Postgres-backed parse job repository.
type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, user_id, COALESCE(document_id, ''), COALESCE(prompt_version, ''), status, result, COALESCE(fail_code, ''), COALESCE(fail_reason, ''), created_at, completed_at`

func (r *PGRepo) Create(ctx context.Context, job ParseJob) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO fragments (id, user_id, document_id, prompt_version, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.UserID, job.DocumentID, job.PromptVersion, job.Status, job.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, jobID string) (ParseJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM fragments
		WHERE id = $1`,
		jobID,
	)
	return scanJob(row)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ParseJob, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM fragments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]ParseJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *PGRepo) MarkProcessing(ctx context.Context, jobID string) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE fragments SET status = $2 WHERE id = $1`,
		jobID, StatusProcessing,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) MarkCompleted(ctx context.Context, jobID string, result json.RawMessage, completedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE fragments
		SET status = $2, result = $3, fail_code = NULL, fail_reason = NULL, completed_at = $4
		WHERE id = $1`,
		jobID, StatusCompleted, []byte(result), completedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) MarkFailed(ctx context.Context, jobID, failCode, failReason string, completedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE fragments
		SET status = $2, fail_code = $3, fail_reason = $4, completed_at = $5
		WHERE id = $1`,
		jobID, StatusFailed, failCode, failReason, completedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (ParseJob, error) {
	var job ParseJob
	var result []byte
	var completedAt sql.NullTime
	err := row.Scan(
		&job.ID, &job.UserID, &job.DocumentID, &job.PromptVersion,
		&job.Status, &result, &job.FailCode, &job.FailReason,
		&job.CreatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ParseJob{}, ErrNotFound
	}
	if err != nil {
		return ParseJob{}, err
	}
	if len(result) > 0 {
		job.Result = json.RawMessage(result)
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
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
