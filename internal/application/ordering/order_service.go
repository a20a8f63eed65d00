package ordering

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/ordering"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderItemInput is one requested line item. The unit price is snapshotted
// into the order; the total is never taken from the client.
type OrderItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateOrderRequest holds input for order creation
type CreateOrderRequest struct {
	Items   []OrderItemInput
	Contact ordering.ContactInfo
}

// UpdateOrderRequest is a partial update. Nil fields are left unchanged;
// a non-nil Items slice replaces the line items wholesale.
type UpdateOrderRequest struct {
	Status  *ordering.OrderStatus
	Contact *ordering.ContactInfo
	Items   []OrderItemInput
}

// OrderService implements the order ledger use cases
type OrderService struct {
	orderRepo ordering.OrderRepository
	authz     *identityapp.AuthorizationService
	logger    *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo ordering.OrderRepository, authz *identityapp.AuthorizationService, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo: orderRepo,
		authz:     authz,
		logger:    logger,
	}
}

// Create creates a pending order owned by ownerID. The total amount is
// derived from the items.
func (s *OrderService) Create(ctx context.Context, ownerID uuid.UUID, req CreateOrderRequest) (*ordering.Order, error) {
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(ownerID, items, req.Contact)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("total", order.TotalAmount.String()),
	)
	return order, nil
}

// Get returns an order, restricted to its owner or an admin
func (s *OrderService) Get(ctx context.Context, actorID, orderID uuid.UUID) (*ordering.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeActor(ctx, actorID, order.OwnerID); err != nil {
		return nil, err
	}
	return order, nil
}

// ListForOwner returns the owner's orders, newest first
func (s *OrderService) ListForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[ordering.Order], error) {
	if ownerID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}
	orders, err := s.orderRepo.FindByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// List returns all orders matching the filter. Callers gate this behind the
// order:list permission.
func (s *OrderService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[ordering.Order], error) {
	orders, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(orders, total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update applies a partial update. Item replacement and total recompute are
// persisted atomically by the repository.
func (s *OrderService) Update(ctx context.Context, actorID, orderID uuid.UUID, req UpdateOrderRequest) (*ordering.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeActor(ctx, actorID, order.OwnerID); err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := order.SetStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.Contact != nil {
		order.UpdateContact(*req.Contact)
	}
	if req.Items != nil {
		items, err := buildItems(req.Items)
		if err != nil {
			return nil, err
		}
		if err := order.ReplaceItems(items); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.Int("item_count", order.ItemCount()),
	)
	return order, nil
}

// Delete removes an order along with its items and payments
func (s *OrderService) Delete(ctx context.Context, actorID, orderID uuid.UUID) error {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.authorizeActor(ctx, actorID, order.OwnerID); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_id", orderID.String()))
	return nil
}

// RecordPayment creates a pending payment row covering the order total
func (s *OrderService) RecordPayment(ctx context.Context, actorID, orderID uuid.UUID, method string) (*ordering.Payment, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeActor(ctx, actorID, order.OwnerID); err != nil {
		return nil, err
	}

	payment, err := ordering.NewPayment(order.ID, order.TotalAmount, method)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.SavePayment(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns the payments recorded against an order
func (s *OrderService) ListPayments(ctx context.Context, orderID uuid.UUID) ([]ordering.Payment, error) {
	return s.orderRepo.FindPaymentsByOrder(ctx, orderID)
}

// BestSellers returns top products by quantity sold in completed orders
func (s *OrderService) BestSellers(ctx context.Context, limit int) ([]ordering.ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.orderRepo.BestSellers(ctx, limit)
}

func (s *OrderService) load(ctx context.Context, orderID uuid.UUID) (*ordering.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

// authorizeActor allows the order owner and admins
func (s *OrderService) authorizeActor(ctx context.Context, actorID, ownerID uuid.UUID) error {
	if actorID == uuid.Nil {
		return shared.ErrUnauthenticated
	}
	if actorID == ownerID {
		return nil
	}
	isAdmin, err := s.authz.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return shared.ErrForbidden
	}
	return nil
}

func buildItems(inputs []OrderItemInput) ([]ordering.OrderItem, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	}
	items := make([]ordering.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := ordering.NewOrderItem(in.ProductID, in.ProductName, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
