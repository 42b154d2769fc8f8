package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubFragmentSource struct {
	frag Fragment
	err  error
}

func (s stubFragmentSource) CompletedFragment(ctx context.Context, userID, fragmentID string) (Fragment, error) {
	if s.err != nil {
		return Fragment{}, s.err
	}
	return s.frag, nil
}

func newTestRouter(t *testing.T, repo ProfilesRepo, fragments FragmentSource) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewHandler(NewService(repo), fragments)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("isGuest", false)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeProfile(t *testing.T, resp *httptest.ResponseRecorder) ProfileResponse {
	t.Helper()
	var out ProfileResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode profile response: %v (body %s)", err, resp.Body.String())
	}
	return out
}

func TestCreateAndListProfiles(t *testing.T) {
	repo := NewMemoryRepo()
	router := newTestRouter(t, repo, nil)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/profiles", map[string]string{"name": "Main"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created ProfileSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if created.ProfileID == "" || created.Name != "Main" {
		t.Fatalf("unexpected summary: %+v", created)
	}

	// Empty body gets the default name.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/profiles", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/profiles", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var list []ProfileSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(list))
	}
}

func TestGetProfileErrors(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "someone-else", EmptyProfileData())
	router := newTestRouter(t, repo, nil)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/profiles/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/profiles/profile-1", nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign profile, got %d", resp.Code)
	}
}

func TestUpdateSectionEndpointSetsDirty(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, nil)

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/profiles/profile-1/sections/skills",
		map[string]any{"skills": []string{"Go", "SQL"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	profile := decodeProfile(t, resp)
	if !profile.Dirty[SectionSkills] {
		t.Fatalf("expected skills dirty, got %v", profile.Dirty)
	}
	if !profile.HasUnsavedChanges {
		t.Fatalf("expected unsaved changes flag")
	}

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/profiles/profile-1/sections/hobbies",
		map[string]any{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown section, got %d", resp.Code)
	}
}

func TestSaveSectionEndpointClearsDirty(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, nil)

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/profiles/profile-1/sections/skills",
		map[string]any{"skills": []string{"Go"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/sections/skills/save", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	profile := decodeProfile(t, resp)
	if profile.Dirty[SectionSkills] {
		t.Fatalf("expected skills clean after save, got %v", profile.Dirty)
	}

	doc, err := repo.GetByID(context.Background(), "user-1", "profile-1")
	if err != nil {
		t.Fatalf("get doc: %v", err)
	}
	if len(doc.Data.Skills) != 1 || doc.Data.Skills[0] != "Go" {
		t.Fatalf("expected skills persisted, got %v", doc.Data.Skills)
	}
}

func TestSaveContactInfoRequiresEmailAndPhone(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, nil)

	// Partial contact info is storable via PATCH but not submittable.
	resp := doJSON(t, router, http.MethodPatch, "/api/v1/profiles/profile-1/sections/contactInfo",
		map[string]any{"contactInfo": map[string]any{"email": "me@example.com"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/sections/contactInfo/save", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without phone, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPatch, "/api/v1/profiles/profile-1/sections/contactInfo",
		map[string]any{"contactInfo": map[string]any{"phone": "555-0100"}})
	if resp.Code != http.StatusOK {
		t.Fatalf("patch phone: expected 200, got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/sections/contactInfo/save", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with email and phone, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMergeFragmentEndpoint(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", ProfileData{Skills: []string{"Go"}})
	frag := Fragment{
		Skills:     []string{"SQL"},
		JobHistory: []JobEntry{{ID: "j1", Company: "Acme", Title: "Engineer"}},
	}
	router := newTestRouter(t, repo, stubFragmentSource{frag: frag})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/merge/frag-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	profile := decodeProfile(t, resp)
	if len(profile.Data.Skills) != 2 {
		t.Fatalf("expected merged skills, got %v", profile.Data.Skills)
	}
	if len(profile.Data.JobHistory) != 1 {
		t.Fatalf("expected merged job history, got %v", profile.Data.JobHistory)
	}
	if !profile.Dirty[SectionSkills] || !profile.Dirty[SectionJobHistory] {
		t.Fatalf("expected touched sections dirty, got %v", profile.Dirty)
	}
}

func TestMergeFragmentNotReady(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, stubFragmentSource{err: ErrFragmentNotReady})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/merge/frag-1", nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMergeFragmentParseFailure(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, stubFragmentSource{err: ErrParseFailure})

	resp := doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/merge/frag-1", nil)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestJobEntryEndpoints(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, nil)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/profiles/profile-1/jobs",
		map[string]any{"company": "Acme", "title": "Engineer", "startDate": "2020-01"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var entry JobEntry
	if err := json.Unmarshal(resp.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.ID == "" {
		t.Fatalf("expected assigned entry ID")
	}

	resp = doJSON(t, router, http.MethodPut, "/api/v1/profiles/profile-1/jobs/"+entry.ID,
		map[string]any{"company": "Acme", "title": "Staff Engineer"})
	if resp.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.Code)
	}
	profile := decodeProfile(t, resp)
	if profile.Data.JobHistory[0].Title != "Staff Engineer" {
		t.Fatalf("expected updated title, got %+v", profile.Data.JobHistory[0])
	}
	if profile.Data.JobHistory[0].ID != entry.ID {
		t.Fatalf("expected ID stable across update")
	}

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/profiles/profile-1/jobs/"+entry.ID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.Code)
	}
	profile = decodeProfile(t, resp)
	if len(profile.Data.JobHistory) != 0 {
		t.Fatalf("expected empty job history, got %v", profile.Data.JobHistory)
	}

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/profiles/profile-1/jobs/"+entry.ID, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for re-delete, got %d", resp.Code)
	}
}

func TestRenameAndDeleteProfile(t *testing.T) {
	repo := NewMemoryRepo()
	seedProfile(t, repo, "user-1", EmptyProfileData())
	router := newTestRouter(t, repo, nil)

	resp := doJSON(t, router, http.MethodPatch, "/api/v1/profiles/profile-1",
		map[string]string{"name": "Renamed"})
	if resp.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d", resp.Code)
	}
	doc, err := repo.GetByID(context.Background(), "user-1", "profile-1")
	if err != nil {
		t.Fatalf("get doc: %v", err)
	}
	if doc.Name != "Renamed" {
		t.Fatalf("expected renamed doc, got %q", doc.Name)
	}
	if doc.UpdatedAt.Before(doc.CreatedAt) || time.Since(doc.UpdatedAt) > time.Minute {
		t.Fatalf("expected updatedAt refreshed, got %s", doc.UpdatedAt)
	}

	resp = doJSON(t, router, http.MethodDelete, "/api/v1/profiles/profile-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.Code)
	}
	resp = doJSON(t, router, http.MethodGet, "/api/v1/profiles/profile-1", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.Code)
	}
}
