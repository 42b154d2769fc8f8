package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMarshalsData(t *testing.T) {
	repo, mock := newMockRepo(t)

	doc := ProfileDoc{
		ID:        "profile-1",
		UserID:    "user-1",
		Name:      "Main",
		Data:      ProfileData{Skills: []string{"Go"}},
		CreatedAt: time.Now().UTC(),
	}
	payload, _ := json.Marshal(doc.Data)

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs(doc.ID, doc.UserID, doc.Name, payload, doc.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDOwnerMismatch(t *testing.T) {
	repo, mock := newMockRepo(t)

	payload, _ := json.Marshal(EmptyProfileData())
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "data", "created_at", "updated_at"}).
		AddRow("profile-1", "someone-else", "Main", payload, time.Now().UTC(), time.Now().UTC())
	mock.ExpectQuery("SELECT id, user_id, name, data").
		WithArgs("profile-1").
		WillReturnRows(rows)

	_, err := repo.GetByID(context.Background(), "user-1", "profile-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, user_id, name, data").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "data", "created_at", "updated_at"}))

	_, err := repo.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDDecodesData(t *testing.T) {
	repo, mock := newMockRepo(t)

	data := ProfileData{
		ContactInfo:     ContactInfo{Email: "me@example.com", Phone: "555-0100"},
		CareerObjective: "Build things",
		Skills:          []string{"Go", "SQL"},
		JobHistory:      []JobEntry{{ID: "j1", Company: "Acme"}},
		Education:       []EducationEntry{{ID: "e1", School: "State U"}},
	}
	payload, _ := json.Marshal(data)
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "data", "created_at", "updated_at"}).
		AddRow("profile-1", "user-1", "Main", payload, time.Now().UTC(), time.Now().UTC())
	mock.ExpectQuery("SELECT id, user_id, name, data").
		WithArgs("profile-1").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "user-1", "profile-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.Data.CareerObjective != "Build things" || len(doc.Data.JobHistory) != 1 {
		t.Fatalf("unexpected decoded data: %+v", doc.Data)
	}
}

func TestPGRepoReplaceSectionUsesJSONBSet(t *testing.T) {
	repo, mock := newMockRepo(t)

	data := ProfileData{Skills: []string{"Go", "SQL"}}
	payload, _ := json.Marshal(data.Skills)

	mock.ExpectExec("SET data = jsonb_set").
		WithArgs("user-1", "profile-1", "{skills}", payload).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ReplaceSection(context.Background(), "user-1", "profile-1", SectionSkills, data); err != nil {
		t.Fatalf("ReplaceSection: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReplaceSectionRejectsUnknownSection(t *testing.T) {
	repo, _ := newMockRepo(t)

	err := repo.ReplaceSection(context.Background(), "user-1", "profile-1", Section("hobbies"), ProfileData{})
	if !errors.Is(err, ErrInvalidSection) {
		t.Fatalf("expected ErrInvalidSection, got %v", err)
	}
}

func TestPGRepoUpdatesRequireARow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE profiles").
		WithArgs("user-1", "missing", "Renamed").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Rename(context.Background(), "user-1", "missing", "Renamed"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteSoftDeletes(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("SET deleted_at = now").
		WithArgs("user-1", "profile-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "user-1", "profile-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
