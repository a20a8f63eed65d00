package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// RoleRepository persists Role aggregates including their permission sets.
// FindByIDs skips unknown IDs rather than failing, so callers can resolve a
// user's assignments even when some referenced roles have been removed.
type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Role, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}
