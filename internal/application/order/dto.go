package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// Verification actions
const (
	VerifyActionApprove = "approve"
	VerifyActionReject  = "reject"
)

// PlaceOrderItemInput represents a requested line item
type PlaceOrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest represents a request to place an order
type PlaceOrderRequest struct {
	Items            []PlaceOrderItemInput `json:"items" binding:"required,min=1"`
	DeclaredTotal    decimal.Decimal       `json:"declared_total" binding:"required"`
	PaymentReference string                `json:"payment_reference" binding:"required,len=12"`
	ShippingAddress  string                `json:"shipping_address" binding:"required,min=1,max=500"`
}

// VerifyPaymentRequest approves or rejects a pending order's payment
type VerifyPaymentRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
	Reason string `json:"reason" binding:"max=500"`
}

// ConfirmDeliveryRequest carries the delivery code presented by the buyer
type ConfirmDeliveryRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// OverrideStatusRequest forces an order into an arbitrary status
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Status       *order.OrderStatus  `form:"status"`
	BuyerID      *uuid.UUID          `form:"buyer_id"`
	AgentID      *uuid.UUID          `form:"agent_id"`
	PayoutStatus *order.PayoutStatus `form:"payout_status"`
	Page         int                 `form:"page" binding:"min=0"`
	PageSize     int                 `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string              `form:"order_by"`
	OrderDir     string              `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// OrderResponse represents an order in API responses. The delivery code hash
// never leaves the server; the plaintext is delivered out of band.
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	BuyerID          uuid.UUID           `json:"buyer_id"`
	Items            []OrderItemResponse `json:"items"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	ShippingAddress  string              `json:"shipping_address"`
	PaymentReference string              `json:"payment_reference"`
	PaymentVerified  bool                `json:"payment_verified"`
	Status           string              `json:"status"`
	AgentID          *uuid.UUID          `json:"agent_id,omitempty"`
	PayoutAmount     decimal.Decimal     `json:"payout_amount"`
	PayoutStatus     string              `json:"payout_status,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	Version          int                 `json:"version"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	return OrderResponse{
		ID:               o.ID,
		BuyerID:          o.BuyerID,
		Items:            items,
		TotalAmount:      o.TotalAmount,
		ShippingAddress:  o.ShippingAddress,
		PaymentReference: o.PaymentReference,
		PaymentVerified:  o.PaymentVerified,
		Status:           o.Status.String(),
		AgentID:          o.AgentID,
		PayoutAmount:     o.PayoutAmount,
		PayoutStatus:     string(o.PayoutStatus),
		CancelReason:     o.CancelReason,
		Version:          o.GetVersion(),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}
