package jobads

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory job ad repository for dev and tests.
type MemoryRepo struct {
	mu  sync.RWMutex
	ads map[string]JobAd
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{ads: make(map[string]JobAd)}
}

func (r *MemoryRepo) Create(ctx context.Context, ad JobAd) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ads[ad.ID] = ad
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, adID string) (JobAd, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ad, ok := r.ads[adID]
	if !ok || ad.UserID != userID {
		return JobAd{}, ErrNotFound
	}
	return ad, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]JobAd, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	ads := make([]JobAd, 0)
	for _, ad := range r.ads {
		if ad.UserID == userID {
			ads = append(ads, ad)
		}
	}
	sort.Slice(ads, func(i, j int) bool {
		return ads[i].CreatedAt.After(ads[j].CreatedAt)
	})

	if offset >= len(ads) {
		return []JobAd{}, nil
	}
	ads = ads[offset:]
	if limit > 0 && limit < len(ads) {
		ads = ads[:limit]
	}
	return ads, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, adID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	ad, ok := r.ads[adID]
	if !ok || ad.UserID != userID {
		return ErrNotFound
	}
	delete(r.ads, adID)
	return nil
}
