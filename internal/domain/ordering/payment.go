package ordering

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// PaymentStatus represents the state of a payment attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records a payment attempt against an order. The gateway wire format
// is opaque here; only the outcome and an external reference are stored.
// Payments are removed together with their order.
type Payment struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Method    string          `gorm:"size:50"`
	Status    PaymentStatus   `gorm:"size:20;not null;default:'pending'"`
	Reference string          `gorm:"size:255"`
}

// NewPayment creates a pending payment record for an order
func NewPayment(orderID uuid.UUID, amount decimal.Decimal, method string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order ID is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount cannot be negative")
	}
	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Amount:     amount,
		Method:     method,
		Status:     PaymentStatusPending,
	}, nil
}

// MarkSucceeded records a successful payment with its gateway reference
func (p *Payment) MarkSucceeded(reference string) {
	p.Status = PaymentStatusSucceeded
	p.Reference = reference
}

// MarkFailed records a failed payment attempt
func (p *Payment) MarkFailed(reference string) {
	p.Status = PaymentStatusFailed
	p.Reference = reference
}
