package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	// ProductStatusActive means the product is sellable
	ProductStatusActive ProductStatus = "ACTIVE"
	// ProductStatusPending means the product awaits manager approval
	ProductStatusPending ProductStatus = "PENDING"
	// ProductStatusRejected means the product was declined during review
	ProductStatusRejected ProductStatus = "REJECTED"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusPending, ProductStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Product is the aggregate root of the catalog store. Stock quantity is an
// integer and must never be negative; the conditional decrement that
// guarantees this under concurrency lives in the repository, not here.
type Product struct {
	shared.BaseAggregateRoot
	SKU               string          `gorm:"size:64;not null;uniqueIndex"`
	Name              string          `gorm:"size:200;not null"`
	Description       string          `gorm:"size:2000"`
	Price             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity          int64           `gorm:"not null;default:0"`
	LowStockThreshold int64           `gorm:"not null;default:0"`
	AgentID           *uuid.UUID      `gorm:"type:uuid;index"` // owning sales agent, nil for house products
	Status            ProductStatus   `gorm:"size:16;not null;index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product. Products submitted by a sales agent start
// in PENDING and must be approved before they can be sold; products created
// by a privileged operator start ACTIVE.
func NewProduct(sku, name string, price decimal.Decimal, quantity, lowStockThreshold int64, agentID *uuid.UUID, status ProductStatus) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be negative")
	}
	if lowStockThreshold < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Low-stock threshold cannot be negative")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid product status")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Price:             price,
		Quantity:          quantity,
		LowStockThreshold: lowStockThreshold,
		AgentID:           agentID,
		Status:            status,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Approve moves a pending product into the sellable pool
func (p *Product) Approve() error {
	if p.Status != ProductStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot approve product in %s status", p.Status))
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductApprovedEvent(p))

	return nil
}

// Reject declines a pending product
func (p *Product) Reject(reason string) error {
	if p.Status != ProductStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot reject product in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}
	p.Status = ProductStatusRejected
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductRejectedEvent(p, reason))

	return nil
}

// UpdatePrice changes the catalog price. Prices already frozen into placed
// orders are unaffected.
func (p *Product) UpdatePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Price cannot be negative")
	}
	p.Price = price.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetLowStockThreshold sets the quantity below which a low-stock signal is raised
func (p *Product) SetLowStockThreshold(threshold int64) error {
	if threshold < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Low-stock threshold cannot be negative")
	}
	p.LowStockThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// AdjustQuantity restates the absolute stock quantity (stock taking).
// The reason is recorded for audit purposes.
func (p *Product) AdjustQuantity(actual int64, reason string) error {
	if actual < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity cannot be negative")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Adjustment reason is required")
	}

	previous := p.Quantity
	p.Quantity = actual
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewStockAdjustedEvent(p, previous, actual, reason))

	if p.IsBelowThreshold() {
		p.AddDomainEvent(NewLowStockEvent(p))
	}

	return nil
}

// IsSellable returns true if the product may appear in new orders
func (p *Product) IsSellable() bool {
	return p.Status == ProductStatusActive
}

// CanFulfill returns true if current stock covers the requested quantity
func (p *Product) CanFulfill(quantity int64) bool {
	return quantity > 0 && p.Quantity >= quantity
}

// IsBelowThreshold returns true if quantity has fallen below the low-stock threshold
func (p *Product) IsBelowThreshold() bool {
	return p.LowStockThreshold > 0 && p.Quantity < p.LowStockThreshold
}

// GetPriceMoney returns the price as a Money value object
func (p *Product) GetPriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Price)
}
