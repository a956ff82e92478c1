package catalog

import (
	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// Event types for the catalog context
const (
	EventTypeProductCreated  = "catalog.product.created"
	EventTypeProductApproved = "catalog.product.approved"
	EventTypeProductRejected = "catalog.product.rejected"
	EventTypeStockAdjusted   = "catalog.product.stock_adjusted"
	EventTypeLowStock        = "catalog.product.low_stock"
)

// ProductCreatedEvent is emitted when a product enters the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU     string        `json:"sku"`
	Name    string        `json:"name"`
	Status  ProductStatus `json:"status"`
	AgentID *uuid.UUID    `json:"agent_id,omitempty"`
}

// NewProductCreatedEvent creates a ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", p.ID),
		SKU:             p.SKU,
		Name:            p.Name,
		Status:          p.Status,
		AgentID:         p.AgentID,
	}
}

// ProductApprovedEvent is emitted when a pending product is approved
type ProductApprovedEvent struct {
	shared.BaseDomainEvent
	SKU     string     `json:"sku"`
	AgentID *uuid.UUID `json:"agent_id,omitempty"`
}

// NewProductApprovedEvent creates a ProductApprovedEvent
func NewProductApprovedEvent(p *Product) *ProductApprovedEvent {
	return &ProductApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductApproved, "Product", p.ID),
		SKU:             p.SKU,
		AgentID:         p.AgentID,
	}
}

// ProductRejectedEvent is emitted when a pending product is declined
type ProductRejectedEvent struct {
	shared.BaseDomainEvent
	SKU     string     `json:"sku"`
	Reason  string     `json:"reason"`
	AgentID *uuid.UUID `json:"agent_id,omitempty"`
}

// NewProductRejectedEvent creates a ProductRejectedEvent
func NewProductRejectedEvent(p *Product, reason string) *ProductRejectedEvent {
	return &ProductRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductRejected, "Product", p.ID),
		SKU:             p.SKU,
		Reason:          reason,
		AgentID:         p.AgentID,
	}
}

// StockAdjustedEvent is emitted when stock is restated during inventory edits
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	SKU      string `json:"sku"`
	Previous int64  `json:"previous"`
	Actual   int64  `json:"actual"`
	Reason   string `json:"reason"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(p *Product, previous, actual int64, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, "Product", p.ID),
		SKU:             p.SKU,
		Previous:        previous,
		Actual:          actual,
		Reason:          reason,
	}
}

// LowStockEvent is emitted when quantity falls below the configured threshold
type LowStockEvent struct {
	shared.BaseDomainEvent
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Threshold int64  `json:"threshold"`
}

// NewLowStockEvent creates a LowStockEvent
func NewLowStockEvent(p *Product) *LowStockEvent {
	return &LowStockEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStock, "Product", p.ID),
		SKU:             p.SKU,
		Name:            p.Name,
		Quantity:        p.Quantity,
		Threshold:       p.LowStockThreshold,
	}
}
