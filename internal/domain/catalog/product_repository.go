package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for products.
//
// DecrementStock and IncrementStock are single conditional store operations:
// DecrementStock must fail atomically when the resulting quantity would go
// negative, closing the check-then-decrement race. The order pipeline is the
// only caller of these two methods outside explicit inventory edits.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error
	SaveWithLock(ctx context.Context, product *Product) error

	// DecrementStock atomically runs
	//   UPDATE products SET quantity = quantity - n WHERE id = ? AND quantity >= n
	// and returns ErrInsufficientStock when no row qualifies.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int64) error

	// IncrementStock atomically adds quantity back (order rejection restock,
	// rollback of a partially applied multi-item decrement).
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int64) error
}
