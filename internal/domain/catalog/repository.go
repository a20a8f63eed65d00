package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductRepository persists Product aggregates.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateAverageRating writes only the average_rating column so the
	// recompute path cannot clobber concurrent product edits.
	UpdateAverageRating(ctx context.Context, productID uuid.UUID, average float64) error
}
