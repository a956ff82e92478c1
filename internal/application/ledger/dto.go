package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// TransactionListFilter represents filter options for the ledger query
type TransactionListFilter struct {
	Type         *ledger.TransactionType   `form:"type"`
	Status       *ledger.TransactionStatus `form:"status"`
	OrderID      *uuid.UUID                `form:"order_id"`
	BuyerID      *uuid.UUID                `form:"buyer_id"`
	AgentID      *uuid.UUID                `form:"agent_id"`
	OccurredFrom *time.Time                `form:"occurred_from"`
	OccurredTo   *time.Time                `form:"occurred_to"`
	Page         int                       `form:"page" binding:"min=0"`
	PageSize     int                       `form:"page_size" binding:"min=0,max=100"`
	OrderBy      string                    `form:"order_by"`
	OrderDir     string                    `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID             uuid.UUID       `json:"id"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Quantity       int64           `json:"quantity"`
	Description    string          `json:"description"`
	RelatedOrderID *uuid.UUID      `json:"related_order_id,omitempty"`
	BuyerID        *uuid.UUID      `json:"buyer_id,omitempty"`
	AgentID        *uuid.UUID      `json:"agent_id,omitempty"`
	ProductID      *uuid.UUID      `json:"product_id,omitempty"`
	Metadata       ledger.Metadata `json:"metadata,omitempty"`
	UpdatedBy      *uuid.UUID      `json:"updated_by,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain transaction to a response DTO
func ToTransactionResponse(tx *ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             tx.ID,
		Type:           tx.Type.String(),
		Status:         tx.Status.String(),
		Amount:         tx.Amount,
		Quantity:       tx.Quantity,
		Description:    tx.Description,
		RelatedOrderID: tx.RelatedOrderID,
		BuyerID:        tx.BuyerID,
		AgentID:        tx.AgentID,
		ProductID:      tx.ProductID,
		Metadata:       tx.Metadata,
		UpdatedBy:      tx.UpdatedBy,
		OccurredAt:     tx.OccurredAt,
		CreatedAt:      tx.CreatedAt,
	}
}
