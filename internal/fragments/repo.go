package fragments

import (
	"context"
	"encoding/json"
	"time"
)

// Repo defines persistence operations for parse jobs.
type Repo interface {
	Create(ctx context.Context, job ParseJob) error
	GetByID(ctx context.Context, jobID string) (ParseJob, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]ParseJob, error)
	MarkProcessing(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID string, result json.RawMessage, completedAt time.Time) error
	MarkFailed(ctx context.Context, jobID, failCode, failReason string, completedAt time.Time) error
}
