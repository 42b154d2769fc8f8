package fragments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/documents"
	"resume-builder/internal/llm"
	"resume-builder/internal/profiles"
)

type stubDocRepo struct {
	docs map[string]documents.Document
}

func (r *stubDocRepo) Create(ctx context.Context, doc documents.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *stubDocRepo) GetByID(ctx context.Context, userID, documentID string) (documents.Document, error) {
	doc, ok := r.docs[documentID]
	if !ok || doc.UserID != userID {
		return documents.Document{}, documents.ErrNotFound
	}
	return doc, nil
}

func (r *stubDocRepo) GetCurrentByUser(ctx context.Context, userID string) (documents.Document, error) {
	return documents.Document{}, documents.ErrNotFound
}

func (r *stubDocRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]documents.Document, error) {
	return nil, nil
}

func (r *stubDocRepo) Delete(ctx context.Context, userID, documentID string) error { return nil }

type stubStore struct {
	objects map[string]string
}

func (s *stubStore) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := "objects/" + fileName
	s.objects[key] = string(body)
	return key, int64(len(body)), "text/plain", nil
}

func (s *stubStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	body, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object missing")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type stubLLM struct {
	resumeJSON string
	err        error
}

func (s *stubLLM) ParseResume(ctx context.Context, input llm.ParseResumeInput) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.resumeJSON), nil
}

func (s *stubLLM) ParseJobAd(ctx context.Context, input llm.ParseJobAdInput) (json.RawMessage, error) {
	return nil, llm.ErrNotImplemented
}

func newTestService(llmClient llm.Client) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	docRepo := &stubDocRepo{docs: map[string]documents.Document{
		"doc-1": {
			ID:         "doc-1",
			UserID:     "user-1",
			FileName:   "resume.txt",
			MimeType:   "text/plain",
			StorageKey: "objects/doc-1",
		},
	}}
	store := &stubStore{objects: map[string]string{"objects/doc-1": "Jane Doe. Go engineer."}}
	svc := &Service{
		Repo:    repo,
		DocRepo: docRepo,
		Docs:    &documents.Service{Store: store, Repo: docRepo, StorageProvider: "memory"},
		Store:   store,
		LLM:     llmClient,
		Model:   "gpt-4o-mini",
	}
	return svc, repo
}

func seedJob(t *testing.T, repo *MemoryRepo) ParseJob {
	t.Helper()
	job := ParseJob{
		ID:            "job-1",
		UserID:        "user-1",
		DocumentID:    "doc-1",
		PromptVersion: "v2",
		Status:        StatusQueued,
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestCreateRejectsUnknownDocument(t *testing.T) {
	svc, _ := newTestService(&stubLLM{})
	_, err := svc.Create(context.Background(), "user-1", "missing-doc", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsOtherUsersDocument(t *testing.T) {
	svc, _ := newTestService(&stubLLM{})
	_, err := svc.Create(context.Background(), "user-2", "doc-1", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateFromTextStoresDocumentAndQueuesJob(t *testing.T) {
	svc, repo := newTestService(&stubLLM{resumeJSON: `{"skills":["Go"]}`})

	job, err := svc.CreateFromText(context.Background(), "user-1", "Jane Doe. Go engineer.", "")
	if err != nil {
		t.Fatalf("create from text: %v", err)
	}
	if job.DocumentID == "" || job.DocumentID == "doc-1" {
		t.Fatalf("expected a fresh document for the pasted text, got %q", job.DocumentID)
	}
	doc, err := svc.DocRepo.GetByID(context.Background(), "user-1", job.DocumentID)
	if err != nil {
		t.Fatalf("pasted document not stored: %v", err)
	}
	if !strings.HasPrefix(doc.FileName, "pasted-") {
		t.Fatalf("expected pasted file name, got %q", doc.FileName)
	}
	if _, err := repo.GetByID(context.Background(), job.ID); err != nil {
		t.Fatalf("parse job not stored: %v", err)
	}
}

func TestCreateFromTextRejectsBlankText(t *testing.T) {
	svc, _ := newTestService(&stubLLM{})
	if _, err := svc.CreateFromText(context.Background(), "user-1", "   \n", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessCompletesAndNormalizes(t *testing.T) {
	raw := `{
		"contactInfo": {"email": "jane@example.com", "phone": "555-0100"},
		"careerObjective": "Build reliable systems",
		"skills": ["Go", "SQL", "Go"],
		"jobHistory": [{"company": "Acme", "title": "Engineer", "startDate": "Jan 2020", "endDate": ""}],
		"education": [{"school": "State U", "degree": "BSc", "dates": "2014 - 2018"}]
	}`
	svc, repo := newTestService(&stubLLM{resumeJSON: raw})
	job := seedJob(t, repo)

	if err := svc.Process(context.Background(), job.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if stored.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", stored.Status, stored.FailReason)
	}
	if stored.CompletedAt == nil {
		t.Fatal("expected completedAt to be set")
	}

	var frag profiles.Fragment
	if err := json.Unmarshal(stored.Result, &frag); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(frag.JobHistory) != 1 || frag.JobHistory[0].ID == "" {
		t.Fatalf("expected job entry with assigned id, got %+v", frag.JobHistory)
	}
	if len(frag.Education) != 1 || frag.Education[0].ID == "" {
		t.Fatalf("expected education entry with assigned id, got %+v", frag.Education)
	}
	if len(frag.Skills) != 2 {
		t.Fatalf("expected deduplicated skills, got %v", frag.Skills)
	}
}

func TestProcessFailsOnMalformedLLMOutput(t *testing.T) {
	svc, repo := newTestService(&stubLLM{resumeJSON: `{"skills": "not an array"}`})
	job := seedJob(t, repo)

	if err := svc.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected process to fail")
	}

	stored, _ := repo.GetByID(context.Background(), job.ID)
	if stored.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", stored.Status)
	}
	if stored.FailCode != FailCodeLLMSchema {
		t.Fatalf("expected %s, got %s", FailCodeLLMSchema, stored.FailCode)
	}
}

func TestProcessFailsOnLLMError(t *testing.T) {
	svc, repo := newTestService(&stubLLM{err: errors.New("openai request timeout: deadline")})
	job := seedJob(t, repo)

	if err := svc.Process(context.Background(), job.ID); err == nil {
		t.Fatal("expected process to fail")
	}

	stored, _ := repo.GetByID(context.Background(), job.ID)
	if stored.FailCode != FailCodeLLMTimeout {
		t.Fatalf("expected %s, got %s", FailCodeLLMTimeout, stored.FailCode)
	}
}

func TestCompletedFragment(t *testing.T) {
	svc, repo := newTestService(&stubLLM{})
	job := seedJob(t, repo)

	if _, err := svc.CompletedFragment(context.Background(), "user-1", job.ID); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady for queued job, got %v", err)
	}

	result := json.RawMessage(`{"careerObjective": "Lead teams"}`)
	if err := repo.MarkCompleted(context.Background(), job.ID, result, time.Now().UTC()); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	frag, err := svc.CompletedFragment(context.Background(), "user-1", job.ID)
	if err != nil {
		t.Fatalf("completed fragment: %v", err)
	}
	if frag.CareerObjective != "Lead teams" {
		t.Fatalf("unexpected fragment: %+v", frag)
	}

	if _, err := svc.CompletedFragment(context.Background(), "user-2", job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestCompletedFragmentFailedJob(t *testing.T) {
	svc, repo := newTestService(&stubLLM{})
	job := seedJob(t, repo)

	if err := repo.MarkFailed(context.Background(), job.ID, FailCodeLLMSchema, "bad output", time.Now().UTC()); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	_, err := svc.CompletedFragment(context.Background(), "user-1", job.ID)
	if !errors.Is(err, ErrParseFailed) {
		t.Fatalf("expected ErrParseFailed, got %v", err)
	}
}
