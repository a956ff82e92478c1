package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU               string          `json:"sku" binding:"required,min=1,max=64"`
	Name              string          `json:"name" binding:"required,min=1,max=200"`
	Description       string          `json:"description" binding:"max=2000"`
	Price             decimal.Decimal `json:"price" binding:"required"`
	Quantity          int64           `json:"quantity" binding:"min=0"`
	LowStockThreshold int64           `json:"low_stock_threshold" binding:"min=0"`
}

// UpdateProductRequest represents a request to update product pricing or threshold
type UpdateProductRequest struct {
	Price             *decimal.Decimal `json:"price"`
	LowStockThreshold *int64           `json:"low_stock_threshold"`
	Description       *string          `json:"description"`
}

// RejectProductRequest carries the reviewer's reason for declining a listing
type RejectProductRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// AdjustStockRequest restates the absolute on-hand quantity
type AdjustStockRequest struct {
	Quantity int64  `json:"quantity" binding:"min=0"`
	Reason   string `json:"reason" binding:"required,min=1,max=500"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search         string                 `form:"search"`
	Status         *catalog.ProductStatus `form:"status"`
	AgentID        *uuid.UUID             `form:"agent_id"`
	BelowThreshold bool                   `form:"below_threshold"`
	Page           int                    `form:"page" binding:"min=0"`
	PageSize       int                    `form:"page_size" binding:"min=0,max=100"`
	OrderBy        string                 `form:"order_by"`
	OrderDir       string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int64           `json:"quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	BelowThreshold    bool            `json:"below_threshold"`
	AgentID           *uuid.UUID      `json:"agent_id,omitempty"`
	Status            string          `json:"status"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Description:       p.Description,
		Price:             p.Price,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		BelowThreshold:    p.IsBelowThreshold(),
		AgentID:           p.AgentID,
		Status:            p.Status.String(),
		Version:           p.GetVersion(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
