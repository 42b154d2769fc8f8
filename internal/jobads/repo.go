package jobads

import "context"

// Repo defines persistence operations for job ads.
type Repo interface {
	Create(ctx context.Context, ad JobAd) error
	GetByID(ctx context.Context, userID, adID string) (JobAd, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]JobAd, error)
	Delete(ctx context.Context, userID, adID string) error
}
