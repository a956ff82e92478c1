package order

import (
	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for order domain events
const (
	EventTypeOrderPlaced      = "order.placed"
	EventTypePaymentVerified  = "order.payment_verified"
	EventTypeOrderRejected    = "order.rejected"
	EventTypeOrderDelivered   = "order.delivered"
	EventTypePayoutProcessed  = "order.payout_processed"
	EventTypeStatusOverridden = "order.status_overridden"
)

// OrderPlacedEvent is emitted when a buyer places an order
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	BuyerID     uuid.UUID       `json:"buyer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(o *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, "Order", o.ID),
		BuyerID:         o.BuyerID,
		TotalAmount:     o.TotalAmount,
		ItemCount:       len(o.Items),
	}
}

// PaymentVerifiedEvent is emitted when payment verification approves an order
type PaymentVerifiedEvent struct {
	shared.BaseDomainEvent
	BuyerID      uuid.UUID       `json:"buyer_id"`
	ApprovedBy   uuid.UUID       `json:"approved_by"`
	AgentID      *uuid.UUID      `json:"agent_id,omitempty"`
	PayoutAmount decimal.Decimal `json:"payout_amount"`
}

// NewPaymentVerifiedEvent creates a new PaymentVerifiedEvent
func NewPaymentVerifiedEvent(o *Order, approver uuid.UUID) *PaymentVerifiedEvent {
	return &PaymentVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVerified, "Order", o.ID),
		BuyerID:         o.BuyerID,
		ApprovedBy:      approver,
		AgentID:         o.AgentID,
		PayoutAmount:    o.PayoutAmount,
	}
}

// OrderRejectedEvent is emitted when payment verification rejects an order
type OrderRejectedEvent struct {
	shared.BaseDomainEvent
	BuyerID    uuid.UUID `json:"buyer_id"`
	RejectedBy uuid.UUID `json:"rejected_by"`
	Reason     string    `json:"reason"`
}

// NewOrderRejectedEvent creates a new OrderRejectedEvent
func NewOrderRejectedEvent(o *Order, approver uuid.UUID, reason string) *OrderRejectedEvent {
	return &OrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRejected, "Order", o.ID),
		BuyerID:         o.BuyerID,
		RejectedBy:      approver,
		Reason:          reason,
	}
}

// OrderDeliveredEvent is emitted when the buyer confirms delivery
type OrderDeliveredEvent struct {
	shared.BaseDomainEvent
	BuyerID uuid.UUID `json:"buyer_id"`
}

// NewOrderDeliveredEvent creates a new OrderDeliveredEvent
func NewOrderDeliveredEvent(o *Order) *OrderDeliveredEvent {
	return &OrderDeliveredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderDelivered, "Order", o.ID),
		BuyerID:         o.BuyerID,
	}
}

// PayoutProcessedEvent is emitted when an agent commission is settled
type PayoutProcessedEvent struct {
	shared.BaseDomainEvent
	AgentID      *uuid.UUID      `json:"agent_id,omitempty"`
	ProcessedBy  uuid.UUID       `json:"processed_by"`
	PayoutAmount decimal.Decimal `json:"payout_amount"`
}

// NewPayoutProcessedEvent creates a new PayoutProcessedEvent
func NewPayoutProcessedEvent(o *Order, processor uuid.UUID) *PayoutProcessedEvent {
	return &PayoutProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutProcessed, "Order", o.ID),
		AgentID:         o.AgentID,
		ProcessedBy:     processor,
		PayoutAmount:    o.PayoutAmount,
	}
}

// StatusOverriddenEvent is emitted when an admin forces a status change
type StatusOverriddenEvent struct {
	shared.BaseDomainEvent
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	Reason         string      `json:"reason"`
}

// NewStatusOverriddenEvent creates a new StatusOverriddenEvent
func NewStatusOverriddenEvent(o *Order, previous, target OrderStatus, reason string) *StatusOverriddenEvent {
	return &StatusOverriddenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusOverridden, "Order", o.ID),
		PreviousStatus:  previous,
		NewStatus:       target,
		Reason:          reason,
	}
}
