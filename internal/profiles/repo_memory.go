package profiles

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of ProfilesRepo, used in dev
// and tests when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]ProfileDoc // profileID -> doc
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]ProfileDoc)}
}

// Create stores a new profile document.
func (r *MemoryRepo) Create(ctx context.Context, doc ProfileDoc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID fetches a profile by ID and verifies ownership.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, profileID string) (ProfileDoc, error) {
	if err := ctx.Err(); err != nil {
		return ProfileDoc{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[profileID]
	if !ok {
		return ProfileDoc{}, ErrNotFound
	}
	if doc.UserID != userID {
		return ProfileDoc{}, ErrUnauthorized
	}
	return doc, nil
}

// ListByUser returns the user's profiles, oldest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]ProfileDoc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ProfileDoc
	for _, doc := range r.data {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Rename updates the display name.
func (r *MemoryRepo) Rename(ctx context.Context, userID, profileID, name string) error {
	return r.update(ctx, userID, profileID, func(doc *ProfileDoc) {
		doc.Name = name
	})
}

// ReplaceData overwrites the whole profile document.
func (r *MemoryRepo) ReplaceData(ctx context.Context, userID, profileID string, data ProfileData) error {
	return r.update(ctx, userID, profileID, func(doc *ProfileDoc) {
		doc.Data = data
	})
}

// ReplaceSection overwrites one section of the document.
func (r *MemoryRepo) ReplaceSection(ctx context.Context, userID, profileID string, section Section, data ProfileData) error {
	if !ValidSection(section) {
		return ErrInvalidSection
	}
	return r.update(ctx, userID, profileID, func(doc *ProfileDoc) {
		switch section {
		case SectionContactInfo:
			doc.Data.ContactInfo = data.ContactInfo
		case SectionCareerObjective:
			doc.Data.CareerObjective = data.CareerObjective
		case SectionSkills:
			doc.Data.Skills = data.Skills
		case SectionJobHistory:
			doc.Data.JobHistory = data.JobHistory
		case SectionEducation:
			doc.Data.Education = data.Education
		}
	})
}

// Delete removes a profile.
func (r *MemoryRepo) Delete(ctx context.Context, userID, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[profileID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, profileID)
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, userID, profileID string, apply func(*ProfileDoc)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[profileID]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	apply(&doc)
	doc.UpdatedAt = time.Now().UTC()
	r.data[profileID] = doc
	return nil
}

var _ ProfilesRepo = (*MemoryRepo)(nil)
