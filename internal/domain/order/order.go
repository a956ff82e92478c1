package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentReferenceLength is the exact length of an externally supplied
// payment reference token
const PaymentReferenceLength = 12

// PayoutRate is the fixed share of the order total paid to the attributed
// sales agent (the remaining 10% is the platform fee)
var PayoutRate = decimal.NewFromFloat(0.90)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPendingVerification OrderStatus = "PENDING_VERIFICATION"
	OrderStatusProcessing          OrderStatus = "PROCESSING"
	OrderStatusShipped             OrderStatus = "SHIPPED"
	OrderStatusReceived            OrderStatus = "RECEIVED"
	OrderStatusCancelled           OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPendingVerification, OrderStatusProcessing, OrderStatusShipped, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// The table is closed: any jump outside it requires the privileged override
// operation, which writes an audit note, never a bare assignment.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPendingVerification:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusReceived
	case OrderStatusReceived, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PayoutStatus represents the settlement status of an order's agent commission
type PayoutStatus string

const (
	// PayoutStatusNone means the order carries no agent attribution
	PayoutStatusNone PayoutStatus = ""
	// PayoutStatusEligible means the commission may be settled
	PayoutStatusEligible PayoutStatus = "ELIGIBLE"
	// PayoutStatusPaid means the commission has been settled
	PayoutStatusPaid PayoutStatus = "PAID"
)

// OrderItem represents a line item in an order. The unit price is frozen at
// placement time and never re-read from the catalog.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"size:200;not null"`
	SKU         string          `gorm:"size:64;not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"` // Quantity * UnitPrice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order line item with the unit price frozen in
func NewOrderItem(orderID, productID uuid.UUID, productName, sku string, quantity int64, unitPrice valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Amount:      unitPrice.Amount().Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Order is the aggregate root of the fulfillment pipeline. Orders are never
// physically deleted; cancellation is a terminal state, not a removal.
type Order struct {
	shared.BaseAggregateRoot
	BuyerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingAddress  string          `gorm:"size:500;not null"`
	PaymentReference string          `gorm:"size:12;not null"`
	PaymentVerified  bool            `gorm:"not null;default:false"`
	DeliveryCodeHash string          `gorm:"size:100;not null"` // bcrypt hash, plaintext never stored
	Status           OrderStatus     `gorm:"size:32;not null;index"`
	AgentID          *uuid.UUID      `gorm:"type:uuid;index"` // sales attribution, set at approval
	PayoutAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PayoutStatus     PayoutStatus    `gorm:"size:16;not null;default:''"`
	CancelReason     string          `gorm:"size:500"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemInput describes a requested line item at placement time
type ItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int64
	UnitPrice   valueobject.Money
}

// NewOrder creates an order in PENDING_VERIFICATION with every line item's
// unit price frozen in. declaredTotal must equal the recomputed item sum.
// deliveryCodeHash is the one-way hash of the placement-time delivery code;
// the plaintext is discarded by the caller and reissued at approval.
func NewOrder(buyerID uuid.UUID, items []ItemInput, declaredTotal decimal.Decimal, paymentReference, shippingAddress, deliveryCodeHash string) (*Order, error) {
	if buyerID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Buyer ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order must contain at least one item")
	}
	if len(paymentReference) != PaymentReferenceLength {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Payment reference must be exactly %d characters", PaymentReferenceLength))
	}
	if shippingAddress == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Shipping address cannot be empty")
	}
	if deliveryCodeHash == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Delivery code hash cannot be empty")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuyerID:           buyerID,
		Items:             make([]OrderItem, 0, len(items)),
		ShippingAddress:   shippingAddress,
		PaymentReference:  paymentReference,
		PaymentVerified:   false,
		DeliveryCodeHash:  deliveryCodeHash,
		Status:            OrderStatusPendingVerification,
		PayoutAmount:      decimal.Zero,
		PayoutStatus:      PayoutStatusNone,
	}

	total := decimal.Zero
	for _, in := range items {
		item, err := NewOrderItem(o.ID, in.ProductID, in.ProductName, in.SKU, in.Quantity, in.UnitPrice)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, *item)
		total = total.Add(item.Amount)
	}
	if !total.Equal(declaredTotal) {
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("Declared total %s does not match item sum %s", declaredTotal.StringFixed(2), total.StringFixed(2)))
	}
	o.TotalAmount = total

	o.AddDomainEvent(NewOrderPlacedEvent(o))

	return o, nil
}

// ApprovePayment marks the payment as verified and moves the order to
// PROCESSING. agentID carries the sales attribution derived from the first
// line item's product; when present, the commission becomes eligible at
// PayoutRate of the total, rounded half-up to cents. newCodeHash replaces
// the placement-time delivery code hash: the original plaintext cannot be
// recovered, so a fresh code is issued and delivered to the buyer.
func (o *Order) ApprovePayment(approver uuid.UUID, agentID *uuid.UUID, newCodeHash string) error {
	if !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot approve payment for order in %s status", o.Status))
	}
	if newCodeHash == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Delivery code hash cannot be empty")
	}

	o.PaymentVerified = true
	o.Status = OrderStatusProcessing
	o.DeliveryCodeHash = newCodeHash
	if agentID != nil {
		o.AgentID = agentID
		o.PayoutAmount = o.TotalAmount.Mul(PayoutRate).Round(2)
		o.PayoutStatus = PayoutStatusEligible
	}
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPaymentVerifiedEvent(o, approver))

	return nil
}

// RejectPayment cancels a pending order. The caller is responsible for
// restocking every line item (the inverse of the deduction at placement).
func (o *Order) RejectPayment(approver uuid.UUID, reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot reject payment for order in %s status", o.Status))
	}
	if reason == "" {
		reason = "Payment verification rejected"
	}

	o.PaymentVerified = false
	o.Status = OrderStatusCancelled
	o.CancelReason = reason
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderRejectedEvent(o, approver, reason))

	return nil
}

// MarkShipped moves a processing order to SHIPPED
func (o *Order) MarkShipped() error {
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}

	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// ConfirmDelivery compares the presented code against the stored hash and,
// on match, moves the order to its terminal RECEIVED state. A mismatch is
// INVALID_CODE; confirming an order that is not in transit is STATE_CONFLICT.
func (o *Order) ConfirmDelivery(presentedCode string) error {
	if o.Status == OrderStatusReceived {
		return shared.NewDomainError("STATE_CONFLICT", "Order has already been received")
	}
	if !o.Status.CanTransitionTo(OrderStatusReceived) {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot confirm delivery for order in %s status", o.Status))
	}
	if !CompareDeliveryCode(o.DeliveryCodeHash, presentedCode) {
		return shared.ErrInvalidCode
	}

	o.Status = OrderStatusReceived
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// MarkPayoutPaid settles the agent commission. Calling it twice, or on an
// order without an eligible payout, is NOT_ELIGIBLE. The order status itself
// is unaffected.
func (o *Order) MarkPayoutPaid(processor uuid.UUID) error {
	if o.PayoutStatus != PayoutStatusEligible {
		return shared.ErrNotEligible
	}

	o.PayoutStatus = PayoutStatusPaid
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPayoutProcessedEvent(o, processor))

	return nil
}

// OverrideStatus jumps the order to an arbitrary status outside the closed
// transition table. It exists only as an admin escape hatch; the application
// layer requires a reason and writes an operator note to the order's ledger
// entry, so the jump is always audited.
func (o *Order) OverrideStatus(target OrderStatus, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Invalid target status")
	}
	if reason == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Override reason is required")
	}
	if o.Status == target {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Order is already in %s status", target))
	}

	previous := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewStatusOverriddenEvent(o, previous, target, reason))

	return nil
}

// FirstItem returns the first line item; sales attribution is derived from
// it (single-attribution simplification, multi-vendor orders are not split)
func (o *Order) FirstItem() *OrderItem {
	if len(o.Items) == 0 {
		return nil
	}
	return &o.Items[0]
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusReceived || o.Status == OrderStatusCancelled
}

// IsPayoutEligible returns true if the agent commission can be settled
func (o *Order) IsPayoutEligible() bool {
	return o.PayoutStatus == PayoutStatusEligible
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// GetTotalAmountMoney returns the total as a Money value object
func (o *Order) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.TotalAmount)
}
