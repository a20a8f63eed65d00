package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductStatus represents the availability state of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is the catalog aggregate referenced by orders and reviews.
// AverageRating is written only by the rating recompute routine.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"size:200;not null"`
	Description   string          `gorm:"size:2000"`
	Price         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Stock         int             `gorm:"not null;default:0"`
	Status        ProductStatus   `gorm:"size:20;not null;default:'active'"`
	AverageRating float64         `gorm:"not null;default:0"`
}

// NewProduct creates an active product
func NewProduct(name, description string, price decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Stock cannot be negative")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Price:             price,
		Stock:             stock,
		Status:            ProductStatusActive,
	}, nil
}

// IsActive reports whether the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
