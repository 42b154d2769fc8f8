package fragments

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory parse job repository for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]ParseJob
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]ParseJob)}
}

func (r *MemoryRepo) Create(ctx context.Context, job ParseJob) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (ParseJob, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ParseJob{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ParseJob, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]ParseJob, 0)
	for _, job := range r.jobs {
		if job.UserID == userID {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if offset >= len(jobs) {
		return []ParseJob{}, nil
	}
	jobs = jobs[offset:]
	if limit > 0 && limit < len(jobs) {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (r *MemoryRepo) MarkProcessing(ctx context.Context, jobID string) error {
	_ = ctx
	return r.update(jobID, func(job *ParseJob) {
		job.Status = StatusProcessing
	})
}

func (r *MemoryRepo) MarkCompleted(ctx context.Context, jobID string, result json.RawMessage, completedAt time.Time) error {
	_ = ctx
	return r.update(jobID, func(job *ParseJob) {
		job.Status = StatusCompleted
		job.Result = result
		job.FailCode = ""
		job.FailReason = ""
		job.CompletedAt = &completedAt
	})
}

func (r *MemoryRepo) MarkFailed(ctx context.Context, jobID, failCode, failReason string, completedAt time.Time) error {
	_ = ctx
	return r.update(jobID, func(job *ParseJob) {
		job.Status = StatusFailed
		job.FailCode = failCode
		job.FailReason = failReason
		job.CompletedAt = &completedAt
	})
}

func (r *MemoryRepo) update(jobID string, apply func(*ParseJob)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	apply(&job)
	r.jobs[jobID] = job
	return nil
}
