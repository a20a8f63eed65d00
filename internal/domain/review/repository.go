package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository persists Review aggregates. FindByUserAndProduct returns
// shared.ErrNotFound when no review exists for the pair.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*Review, error)
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Review, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	Save(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AverageRatingByProduct computes the mean rating in a single aggregate
	// query, returning 0 when the product has no reviews.
	AverageRatingByProduct(ctx context.Context, productID uuid.UUID) (float64, error)
}
