package repository

import (
	"context"

	"github.com/utafrali/marketplace-discovery/internal/domain"
)

// RatingRepository persists ratings. A user holds at most one rating per
// target; Upsert replaces an existing one in place.
type RatingRepository interface {
	// Upsert stores r and returns the stored rating. When the user already
	// rated the target, the existing id is kept and the score, comment and
	// creation time are replaced.
	Upsert(ctx context.Context, r *domain.Rating) (*domain.Rating, error)
	ListByTarget(ctx context.Context, target domain.TargetRef) ([]domain.Rating, error)
	GetByUserAndTarget(ctx context.Context, userID string, target domain.TargetRef) (*domain.Rating, error)
}
