package recommendation

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines persistence operations for recommendations
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Recommendation, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Recommendation, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, rec *Recommendation) error
	Delete(ctx context.Context, id uuid.UUID) error
}
