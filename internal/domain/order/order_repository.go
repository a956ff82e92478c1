package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID retrieves an order with its line items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll retrieves orders matching the filter with pagination.
	// Supported filter keys: status, buyer_id, agent_id, payout_status.
	FindAll(ctx context.Context, filter shared.Filter) ([]*Order, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save persists an order and its line items
	Save(ctx context.Context, o *Order) error

	// SaveWithLock persists an order guarded by its version column; a stale
	// version returns shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, o *Order) error
}
