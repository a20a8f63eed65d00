package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductSales aggregates sold quantity per product across completed orders
type ProductSales struct {
	ProductID     uuid.UUID
	ProductName   string
	TotalQuantity int64
}

// OrderRepository persists Order aggregates with their items.
//
// Save synchronizes the item rows with the aggregate inside one transaction:
// stale rows are deleted and current ones inserted, so a wholesale item
// replacement is atomic. Delete cascades to item and payment rows.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Review eligibility probes
	HasCompletedOrder(ctx context.Context, ownerID uuid.UUID) (bool, error)
	HasCompletedOrderWithProduct(ctx context.Context, ownerID, productID uuid.UUID) (bool, error)

	// BestSellers returns products ranked by quantity sold in completed orders
	BestSellers(ctx context.Context, limit int) ([]ProductSales, error)

	SavePayment(ctx context.Context, payment *Payment) error
	FindPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]Payment, error)
}
