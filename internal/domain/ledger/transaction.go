package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	// TransactionTypeOrder records an order placement or its settlement lifecycle
	TransactionTypeOrder TransactionType = "ORDER"
	// TransactionTypeSale records a direct sale settled outside the order pipeline
	TransactionTypeSale TransactionType = "SALE"
	// TransactionTypePayout records an agent commission settlement
	TransactionTypePayout TransactionType = "PAYOUT"
	// TransactionTypeRefund records money returned to a buyer
	TransactionTypeRefund TransactionType = "REFUND"
	// TransactionTypePurchase records inbound stock acquisition
	TransactionTypePurchase TransactionType = "PURCHASE"
	// TransactionTypeAdjustment records a manual inventory correction
	TransactionTypeAdjustment TransactionType = "INVENTORY_ADJUSTMENT"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeOrder, TransactionTypeSale, TransactionTypePayout, TransactionTypeRefund, TransactionTypePurchase, TransactionTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// TransactionStatus represents the settlement status of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// Metadata holds free-form structured context for a ledger entry, stored as
// a JSON column
type Metadata map[string]any

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}
}

// Transaction is an append-only ledger entry. Entries are never deleted;
// corrections are posted as new entries, and settlement-lifecycle changes
// mutate only the Status column via the order+type idempotency key.
type Transaction struct {
	shared.BaseAggregateRoot
	Type           TransactionType   `gorm:"size:32;not null;index;uniqueIndex:idx_tx_order_type"`
	Status         TransactionStatus `gorm:"size:16;not null;index"`
	Amount         decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Quantity       int64             `gorm:"not null;default:0"`
	Description    string            `gorm:"size:500;not null"`
	RelatedOrderID *uuid.UUID        `gorm:"type:uuid;index;uniqueIndex:idx_tx_order_type"`
	BuyerID        *uuid.UUID        `gorm:"type:uuid;index"`
	AgentID        *uuid.UUID        `gorm:"type:uuid;index"`
	ProductID      *uuid.UUID        `gorm:"type:uuid;index"`
	CreatedBy      uuid.UUID         `gorm:"type:uuid;not null"`
	UpdatedBy      *uuid.UUID        `gorm:"type:uuid"`
	Metadata       Metadata          `gorm:"type:jsonb"`
	OccurredAt     time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction creates a ledger entry. Amounts are magnitudes; whether the
// money flows in or out of the platform is determined by the entry type.
func NewTransaction(txType TransactionType, amount decimal.Decimal, description string, createdBy uuid.UUID) (*Transaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid transaction type")
	}
	if description == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Description cannot be empty")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Creator cannot be empty")
	}

	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              txType,
		Status:            TransactionStatusPending,
		Amount:            amount,
		Description:       description,
		CreatedBy:         createdBy,
		OccurredAt:        time.Now(),
	}, nil
}

// WithOrder links the entry to an order; together with Type this forms the
// idempotency key
func (t *Transaction) WithOrder(orderID uuid.UUID) *Transaction {
	t.RelatedOrderID = &orderID
	return t
}

// WithBuyer attributes the entry to a buyer
func (t *Transaction) WithBuyer(buyerID uuid.UUID) *Transaction {
	t.BuyerID = &buyerID
	return t
}

// WithAgent attributes the entry to a sales agent
func (t *Transaction) WithAgent(agentID uuid.UUID) *Transaction {
	t.AgentID = &agentID
	return t
}

// WithProduct links the entry to a product
func (t *Transaction) WithProduct(productID uuid.UUID) *Transaction {
	t.ProductID = &productID
	return t
}

// WithQuantity records the number of units the entry covers
func (t *Transaction) WithQuantity(quantity int64) *Transaction {
	t.Quantity = quantity
	return t
}

// WithMetadata attaches structured context to the entry
func (t *Transaction) WithMetadata(meta Metadata) *Transaction {
	t.Metadata = meta
	return t
}

// WithStatus overrides the initial PENDING status
func (t *Transaction) WithStatus(status TransactionStatus) *Transaction {
	t.Status = status
	return t
}

// Complete marks the entry as settled
func (t *Transaction) Complete() error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot complete transaction in %s status", t.Status))
	}
	t.Status = TransactionStatusCompleted
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Fail marks the entry as failed, recording the reason in metadata
func (t *Transaction) Fail(reason string) error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot fail transaction in %s status", t.Status))
	}
	t.Status = TransactionStatusFailed
	if reason != "" {
		if t.Metadata == nil {
			t.Metadata = Metadata{}
		}
		t.Metadata["failure_reason"] = reason
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Cancel marks the entry as cancelled, recording the reason in metadata
func (t *Transaction) Cancel(reason string) error {
	if t.Status != TransactionStatusPending {
		return shared.NewDomainError("STATE_CONFLICT", fmt.Sprintf("Cannot cancel transaction in %s status", t.Status))
	}
	t.Status = TransactionStatusCancelled
	if reason != "" {
		if t.Metadata == nil {
			t.Metadata = Metadata{}
		}
		t.Metadata["cancel_reason"] = reason
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsOutflow returns true if the entry moves money out of the platform.
// Direction follows the entry type; amounts are stored as magnitudes.
func (t *Transaction) IsOutflow() bool {
	switch t.Type {
	case TransactionTypePayout, TransactionTypeRefund, TransactionTypePurchase:
		return true
	}
	return t.Amount.IsNegative()
}
