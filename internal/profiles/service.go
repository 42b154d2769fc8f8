package profiles

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultProfileName = "Untitled profile"

// Service owns profile CRUD and the registry of active engine sessions.
// One engine exists per (user, profile); it is constructed on first use
// and torn down when the profile is deleted.
type Service struct {
	Repo ProfilesRepo

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewService constructs a Service.
func NewService(repo ProfilesRepo) *Service {
	return &Service{
		Repo:    repo,
		engines: make(map[string]*Engine),
	}
}

// Create inserts an empty profile for the user.
func (s *Service) Create(ctx context.Context, userID, name string) (ProfileDoc, error) {
	if strings.TrimSpace(userID) == "" {
		return ProfileDoc{}, ErrInvalidInput
	}
	if strings.TrimSpace(name) == "" {
		name = defaultProfileName
	}

	doc := ProfileDoc{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Data:      EmptyProfileData(),
		CreatedAt: time.Now().UTC(),
	}
	doc.UpdatedAt = doc.CreatedAt

	if err := s.Repo.Create(ctx, doc); err != nil {
		return ProfileDoc{}, err
	}
	return doc, nil
}

// List returns the user's profiles.
func (s *Service) List(ctx context.Context, userID string) ([]ProfileDoc, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Engine returns the engine session for the given profile, loading it
// on first use. The load replaces any stale in-memory state only when
// the session is new; an existing session keeps its local edits.
func (s *Service) Engine(ctx context.Context, userID, profileID string) (*Engine, error) {
	key := userID + "|" + profileID

	s.mu.Lock()
	engine, ok := s.engines[key]
	s.mu.Unlock()
	if ok {
		return engine, nil
	}

	engine = NewEngine(s.Repo, userID, profileID)
	if err := engine.Load(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.engines[key]; ok {
		return existing, nil
	}
	s.engines[key] = engine
	return engine, nil
}

// Reload fetches the profile and replaces the session state wholesale,
// clearing all dirty flags.
func (s *Service) Reload(ctx context.Context, userID, profileID string) (*Engine, error) {
	engine, err := s.Engine(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}
	if err := engine.Load(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

// Rename updates the profile display name.
func (s *Service) Rename(ctx context.Context, userID, profileID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Rename(ctx, userID, profileID, name)
}

// Delete removes the profile and tears down its engine session.
func (s *Service) Delete(ctx context.Context, userID, profileID string) error {
	if err := s.Repo.Delete(ctx, userID, profileID); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.engines, userID+"|"+profileID)
	s.mu.Unlock()
	return nil
}
