package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TypeTotal is a per-type aggregate bucket
type TypeTotal struct {
	Type   TransactionType `json:"type"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// StatusTotal is a per-status aggregate bucket
type StatusTotal struct {
	Status TransactionStatus `json:"status"`
	Count  int64             `json:"count"`
}

// DailyVolume is one day's completed transaction volume
type DailyVolume struct {
	Day    time.Time       `json:"day"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// BuyerVolume ranks a buyer by completed order volume
type BuyerVolume struct {
	BuyerID uuid.UUID       `json:"buyer_id"`
	Count   int64           `json:"count"`
	Amount  decimal.Decimal `json:"amount"`
}

// Summary is the full aggregate view over the ledger
type Summary struct {
	ByType     []TypeTotal     `json:"by_type"`
	ByStatus   []StatusTotal   `json:"by_status"`
	Trend      []DailyVolume   `json:"trend"`
	TopBuyers  []BuyerVolume   `json:"top_buyers"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// TransactionRepository defines the interface for ledger persistence. The
// ledger is append-only: there is no delete, and updates are restricted to
// the settlement status of an existing order+type entry.
type TransactionRepository interface {
	// FindByID retrieves a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByOrderAndType retrieves the unique entry for an order+type pair
	FindByOrderAndType(ctx context.Context, orderID uuid.UUID, txType TransactionType) (*Transaction, error)

	// FindAll retrieves transactions matching the filter with pagination.
	// Supported filter keys: type, status, buyer_id, agent_id, related_order_id,
	// occurred_from, occurred_to.
	FindAll(ctx context.Context, filter shared.Filter) ([]*Transaction, error)

	// Count returns the number of transactions matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Append inserts a new ledger entry; a duplicate order+type pair returns
	// shared.ErrAlreadyExists
	Append(ctx context.Context, tx *Transaction) error

	// UpdateByOrderAndType updates the status of the entry keyed by
	// order+type, merging the template's metadata into the stored metadata,
	// and creating the entry from the template when absent. An empty status
	// keeps the stored one (metadata-only update). Calling it twice with the
	// same arguments is a no-op the second time.
	UpdateByOrderAndType(ctx context.Context, orderID uuid.UUID, txType TransactionType, status TransactionStatus, template *Transaction) error

	// Aggregate computes ledger totals: per-type and per-status buckets, the
	// trailing 30-day daily trend, top buyers by completed order volume, and
	// the net balance (completed order revenue minus completed payouts)
	Aggregate(ctx context.Context) (*Summary, error)
}
