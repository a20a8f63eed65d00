package ordering

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks whether the status is a known value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to the target status follows the
// normal forward flow. Writes do NOT consult this: any valid status value is
// accepted, matching the permissive behavior the ledger has always had.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	transitions := map[OrderStatus][]OrderStatus{
		OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
		OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:   {OrderStatusCompleted},
		OrderStatusCompleted: {},
		OrderStatusCancelled: {},
	}
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ContactInfo holds the buyer-facing fields captured with an order
type ContactInfo struct {
	Email           string `gorm:"size:255"`
	Phone           string `gorm:"size:30"`
	ShippingAddress string `gorm:"size:500"`
	PaymentMethod   string `gorm:"size:50"`
}

// OrderItem is a line item with product name and unit price snapshotted at
// order time. Amount is derived, never stored from client input.
type OrderItem struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"size:200;not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// NewOrderItem creates a validated line item
func NewOrderItem(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (OrderItem, error) {
	if productID == uuid.Nil {
		return OrderItem{}, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if quantity < 1 {
		return OrderItem{}, shared.NewDomainError("INVALID_INPUT", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return OrderItem{}, shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	return OrderItem{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		ProductName: strings.TrimSpace(productName),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}, nil
}

// Amount returns quantity x unit price
func (i OrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the ledger aggregate. TotalAmount always equals the sum of its
// items' amounts; it is recomputed on every item mutation.
type Order struct {
	shared.BaseAggregateRoot
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status      OrderStatus     `gorm:"size:20;not null;default:'pending';index"`
	Contact     ContactInfo     `gorm:"embedded;embeddedPrefix:contact_"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
}

// NewOrder creates a pending order from at least one line item
func NewOrder(ownerID uuid.UUID, items []OrderItem, contact ContactInfo) (*Order, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Owner ID is required")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Status:            OrderStatusPending,
		Contact:           contact,
	}
	for _, item := range items {
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	order.recalculateTotal()
	return order, nil
}

// ReplaceItems swaps the full item list and recomputes the total. The old
// items are discarded wholesale; persistence mirrors this with a
// delete-then-insert inside one transaction.
func (o *Order) ReplaceItems(items []OrderItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Order must contain at least one item")
	}
	o.Items = o.Items[:0]
	for _, item := range items {
		item.OrderID = o.ID
		o.Items = append(o.Items, item)
	}
	o.recalculateTotal()
	return nil
}

// SetStatus assigns a status after membership validation only
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown order status")
	}
	o.Status = status
	return nil
}

// UpdateContact replaces the contact fields
func (o *Order) UpdateContact(contact ContactInfo) {
	o.Contact = contact
}

// IsCompleted reports whether the order reached the completed state
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// IsCancelled reports whether the order was cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount())
	}
	o.TotalAmount = total
}
