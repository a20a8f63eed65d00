package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/ordering"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements ordering.OrderRepository using gorm
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ ordering.OrderRepository = (*GormOrderRepository)(nil)

// FindByID loads an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOwner returns one owner's orders, newest first by default
func (r *GormOrderRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]ordering.Order, error) {
	var orders []ordering.Order
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("owner_id = ?", ownerID)
	query = r.applyFilter(query, filter)
	query = applyOrderAndPagination(query, filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll returns orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	var orders []ordering.Order
	query := r.db.WithContext(ctx).Preload("Items")
	query = r.applyFilter(query, filter)
	query = applyOrderAndPagination(query, filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&ordering.Order{})
	query = r.applyFilter(query, filter)
	err := query.Count(&count).Error
	return count, err
}

// CountByOwner returns the number of orders owned by one user
func (r *GormOrderRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ordering.Order{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error
	return count, err
}

// Save persists the order and synchronizes its item rows inside one
// transaction. Items no longer in the aggregate are deleted, current ones are
// upserted, so a wholesale item replacement is atomic.
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}

		currentIDs := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			currentIDs = append(currentIDs, item.ID)
		}

		stale := tx.Where("order_id = ?", order.ID)
		if len(currentIDs) > 0 {
			stale = stale.Where("id NOT IN ?", currentIDs)
		}
		if err := stale.Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}

		for i := range order.Items {
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an order together with its item and payment rows
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&ordering.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&ordering.Payment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&ordering.Order{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// HasCompletedOrder reports whether the user has any completed order
func (r *GormOrderRepository) HasCompletedOrder(ctx context.Context, ownerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ordering.Order{}).
		Where("owner_id = ? AND status = ?", ownerID, ordering.OrderStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// HasCompletedOrderWithProduct reports whether any of the user's completed
// orders contains the given product
func (r *GormOrderRepository) HasCompletedOrderWithProduct(ctx context.Context, ownerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ordering.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.owner_id = ? AND orders.status = ? AND order_items.product_id = ?",
			ownerID, ordering.OrderStatusCompleted, productID).
		Count(&count).Error
	return count > 0, err
}

// BestSellers ranks products by total quantity sold in completed orders
func (r *GormOrderRepository) BestSellers(ctx context.Context, limit int) ([]ordering.ProductSales, error) {
	var rows []ordering.ProductSales
	err := r.db.WithContext(ctx).Model(&ordering.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS total_quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", ordering.OrderStatusCompleted).
		Group("order_items.product_id, order_items.product_name").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SavePayment persists a payment record
func (r *GormOrderRepository) SavePayment(ctx context.Context, payment *ordering.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// FindPaymentsByOrder returns an order's payments, oldest first
func (r *GormOrderRepository) FindPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]ordering.Payment, error) {
	var payments []ordering.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		}
	}
	return query
}
