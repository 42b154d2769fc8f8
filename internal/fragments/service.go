package fragments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/documents"
	"resume-builder/internal/extract"
	"resume-builder/internal/llm"
	"resume-builder/internal/profiles"
	"resume-builder/internal/queue"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

const defaultPromptVersion = "v2"

// Service contains business logic for fragment extraction.
type Service struct {
	Repo    Repo
	DocRepo documents.DocumentsRepo
	Docs    *documents.Service
	Store   object.ObjectStore
	LLM     llm.Client
	Queue   queue.Client
	Model   string
}

// Create enqueues a parse job for a stored document and kicks off
// asynchronous extraction. With no queue configured the job runs in-process.
func (s *Service) Create(ctx context.Context, userID, documentID, promptVersion string) (ParseJob, error) {
	if userID == "" || documentID == "" {
		return ParseJob{}, fmt.Errorf("%w: userID and documentID are required", ErrInvalidInput)
	}
	if promptVersion == "" {
		promptVersion = defaultPromptVersion
	}

	if _, err := s.DocRepo.GetByID(ctx, userID, documentID); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return ParseJob{}, ErrNotFound
		}
		return ParseJob{}, err
	}

	job := ParseJob{
		ID:            uuid.NewString(),
		UserID:        userID,
		DocumentID:    documentID,
		PromptVersion: promptVersion,
		Status:        StatusQueued,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, job); err != nil {
		return ParseJob{}, err
	}

	if s.Queue != nil {
		msg := queue.Message{
			FragmentID: job.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: job.CreatedAt.Format(time.RFC3339),
			Version:    1,
		}
		if err := s.Queue.Send(ctx, msg); err != nil {
			telemetry.Error("fragment enqueue failed, falling back to in-process", map[string]any{
				"fragment_id": job.ID,
				"error":       err.Error(),
			})
			go s.processAsync(backgroundWithRequestID(ctx), job.ID)
		}
		return job, nil
	}

	go s.processAsync(backgroundWithRequestID(ctx), job.ID)
	return job, nil
}

// CreateFromText stores pasted text as a plain-text document and enqueues a
// parse job for it in one step.
func (s *Service) CreateFromText(ctx context.Context, userID, rawText, promptVersion string) (ParseJob, error) {
	if s.Docs == nil {
		return ParseJob{}, errors.New("documents service not configured")
	}
	doc, err := s.Docs.CreateFromText(ctx, userID, rawText)
	if err != nil {
		if errors.Is(err, documents.ErrInvalidInput) {
			return ParseJob{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
		}
		return ParseJob{}, err
	}
	return s.Create(ctx, userID, doc.ID, promptVersion)
}

// Get returns a parse job owned by the user. Jobs belonging to other users
// report as not found.
func (s *Service) Get(ctx context.Context, userID, jobID string) (ParseJob, error) {
	if userID == "" || jobID == "" {
		return ParseJob{}, ErrInvalidInput
	}
	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		return ParseJob{}, err
	}
	if job.UserID != userID {
		return ParseJob{}, ErrNotFound
	}
	return job, nil
}

// List returns the user's parse jobs, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]ParseJob, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// CompletedFragment returns the parsed fragment for a completed job.
func (s *Service) CompletedFragment(ctx context.Context, userID, jobID string) (profiles.Fragment, error) {
	job, err := s.Get(ctx, userID, jobID)
	if err != nil {
		return profiles.Fragment{}, err
	}
	switch job.Status {
	case StatusCompleted:
	case StatusFailed:
		return profiles.Fragment{}, fmt.Errorf("%w: %s", ErrParseFailed, job.FailReason)
	default:
		return profiles.Fragment{}, ErrNotReady
	}

	var frag profiles.Fragment
	if err := json.Unmarshal(job.Result, &frag); err != nil {
		return profiles.Fragment{}, fmt.Errorf("%w: stored result corrupt: %v", ErrParseFailed, err)
	}
	return frag, nil
}

func (s *Service) processAsync(ctx context.Context, jobID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failJob(ctx, jobID, "", fmt.Errorf("panic: %v", r), nil)
		}
	}()
	_ = s.Process(ctx, jobID)
}

// Process runs the full extraction for a queued job. It is called by both the
// in-process dispatcher and the queue worker.
func (s *Service) Process(ctx context.Context, jobID string) error {
	startedAt := time.Now().UTC()
	if err := s.Repo.MarkProcessing(ctx, jobID); err != nil {
		s.failJob(ctx, jobID, "", fmt.Errorf("set processing failed: %w", err), &startedAt)
		return err
	}

	job, err := s.Repo.GetByID(ctx, jobID)
	if err != nil {
		s.failJob(ctx, jobID, "", fmt.Errorf("job lookup: %w", err), &startedAt)
		return err
	}

	metrics.IncParseStarted()
	telemetry.Info("fragment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           job.UserID,
		"document_id":       job.DocumentID,
		"fragment_id":       job.ID,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	if s.DocRepo == nil || s.Store == nil {
		err := errors.New("missing document store dependencies")
		s.failJob(ctx, jobID, job.UserID, err, &startedAt)
		return err
	}
	if s.LLM == nil {
		err := errors.New("missing llm client")
		s.failJob(ctx, jobID, job.UserID, err, &startedAt)
		return err
	}

	doc, err := s.DocRepo.GetByID(ctx, job.UserID, job.DocumentID)
	if err != nil {
		wrapped := fmt.Errorf("document lookup id=%s: %w", job.DocumentID, err)
		s.failJob(ctx, jobID, job.UserID, wrapped, &startedAt)
		return wrapped
	}

	text, err := extract.Text(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		wrapped := fmt.Errorf("extract document %s mime %s: %w", doc.ID, doc.MimeType, err)
		s.failJob(ctx, jobID, job.UserID, wrapped, &startedAt)
		return wrapped
	}
	if strings.TrimSpace(text) == "" {
		wrapped := fmt.Errorf("extract document %s: empty text", doc.ID)
		s.failJob(ctx, jobID, job.UserID, wrapped, &startedAt)
		return wrapped
	}

	raw, err := s.LLM.ParseResume(ctx, llm.ParseResumeInput{
		DocumentText:  text,
		PromptVersion: job.PromptVersion,
	})
	if err != nil {
		wrapped := fmt.Errorf("llm parse: %w", err)
		s.failJob(ctx, jobID, job.UserID, wrapped, &startedAt)
		return wrapped
	}

	normalized, err := normalizeFragment(raw)
	if err != nil {
		wrapped := fmt.Errorf("llm output invalid: %w", err)
		s.failJob(ctx, jobID, job.UserID, wrapped, &startedAt)
		return wrapped
	}

	completedAt := time.Now().UTC()
	if err := s.Repo.MarkCompleted(ctx, jobID, normalized, completedAt); err != nil {
		wrapped := fmt.Errorf("set result failed: %w", err)
		s.failJob(ctx, jobID, job.UserID, wrapped, &startedAt)
		return wrapped
	}

	metrics.IncParseCompleted()
	metrics.ObserveParseDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("fragment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           job.UserID,
		"document_id":       job.DocumentID,
		"fragment_id":       job.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       durationMs(&startedAt, &completedAt),
	})
	return nil
}

// normalizeFragment validates the raw LLM output and assigns IDs to entries
// that arrived without one. Skills are deduplicated preserving first mention.
func normalizeFragment(raw json.RawMessage) (json.RawMessage, error) {
	var frag profiles.Fragment
	if err := json.Unmarshal(raw, &frag); err != nil {
		return nil, err
	}

	for i := range frag.JobHistory {
		if frag.JobHistory[i].ID == "" {
			frag.JobHistory[i].ID = uuid.NewString()
		}
	}
	for i := range frag.Education {
		if frag.Education[i].ID == "" {
			frag.Education[i].ID = uuid.NewString()
		}
	}
	frag.Skills = profiles.UnionSkills(nil, frag.Skills)

	return json.Marshal(frag)
}

func (s *Service) failJob(ctx context.Context, jobID, userID string, err error, startedAt *time.Time) {
	code := classifyFailure(err)
	msg := sanitizeError(err)
	completedAt := time.Now().UTC()
	if updateErr := s.Repo.MarkFailed(context.Background(), jobID, code, msg, completedAt); updateErr != nil {
		telemetry.Error("fragment fail update", map[string]any{
			"fragment_id": jobID,
			"error":       updateErr.Error(),
			"original":    msg,
		})
	}
	metrics.IncParseFailed()
	if startedAt != nil {
		metrics.ObserveParseDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Info("fragment.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           userID,
		"fragment_id":       jobID,
		"status":            StatusFailed,
		"fail_code":         code,
		"status_transition": "processing->failed",
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	if err == nil {
		return FailCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailCodeLLMTimeout
	}
	if errors.Is(err, extract.ErrUnsupportedType) {
		return FailCodeExtraction
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "openai request timeout"):
		return FailCodeLLMTimeout
	case strings.Contains(msg, "llm output invalid"), strings.Contains(msg, "invalid json"):
		return FailCodeLLMSchema
	case strings.Contains(msg, "extract"):
		return FailCodeExtraction
	case strings.Contains(msg, "document"), strings.Contains(msg, "set processing"), strings.Contains(msg, "set result"):
		return FailCodeStorage
	default:
		return FailCodeInternal
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
