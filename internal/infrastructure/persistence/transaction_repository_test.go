package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ledger"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerTestDB creates an in-memory SQLite database for testing
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ledger.Transaction{}))
	return db
}

func orderEntry(t *testing.T, orderID, buyerID uuid.UUID, amount string) *ledger.Transaction {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(ledger.TransactionTypeOrder, amt, "Order placed", uuid.New())
	require.NoError(t, err)
	return tx.WithOrder(orderID).WithBuyer(buyerID)
}

func TestGormTransactionRepository_Append(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	tx := orderEntry(t, orderID, uuid.New(), "20.00")
	require.NoError(t, repo.Append(ctx, tx))

	retrieved, err := repo.FindByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, retrieved.ID)
	assert.Equal(t, ledger.TransactionStatusPending, retrieved.Status)
	assert.True(t, retrieved.Amount.Equal(decimal.NewFromFloat(20.00)))
}

// The unique order+type key makes placement idempotent: a second entry for
// the same order is rejected, not double-booked.
func TestGormTransactionRepository_Append_DuplicateOrderAndType(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	require.NoError(t, repo.Append(ctx, orderEntry(t, orderID, uuid.New(), "20.00")))

	err := repo.Append(ctx, orderEntry(t, orderID, uuid.New(), "20.00"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	count, err := repo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"related_order_id": orderID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormTransactionRepository_Append_DifferentTypesSameOrder(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	agentID := uuid.New()
	require.NoError(t, repo.Append(ctx, orderEntry(t, orderID, uuid.New(), "20.00")))

	payout, err := ledger.NewTransaction(ledger.TransactionTypePayout, decimal.NewFromFloat(18.00), "Agent payout", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, payout.WithOrder(orderID).WithAgent(agentID).WithStatus(ledger.TransactionStatusCompleted)))

	count, err := repo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"related_order_id": orderID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormTransactionRepository_UpdateByOrderAndType(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	entry := orderEntry(t, orderID, uuid.New(), "20.00").
		WithMetadata(ledger.Metadata{"payment_reference": "PAYREF-00042"})
	require.NoError(t, repo.Append(ctx, entry))

	verifier := uuid.New()
	template, err := ledger.NewTransaction(ledger.TransactionTypeOrder, decimal.NewFromFloat(20.00), "Order placed", verifier)
	require.NoError(t, err)
	template = template.WithOrder(orderID).WithMetadata(ledger.Metadata{"verified_by": verifier.String()})

	err = repo.UpdateByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder, ledger.TransactionStatusCompleted, template)
	require.NoError(t, err)

	updated, err := repo.FindByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)
	assert.Equal(t, ledger.TransactionStatusCompleted, updated.Status)
	assert.Equal(t, verifier.String(), updated.Metadata["verified_by"])
	assert.Equal(t, "PAYREF-00042", updated.Metadata["payment_reference"])
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, verifier, *updated.UpdatedBy)
}

func TestGormTransactionRepository_UpdateByOrderAndType_EmptyStatusKeepsStored(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	entry := orderEntry(t, orderID, uuid.New(), "20.00").WithStatus(ledger.TransactionStatusCompleted)
	require.NoError(t, repo.Append(ctx, entry))

	note, err := ledger.NewTransaction(ledger.TransactionTypeOrder, decimal.NewFromFloat(20.00), "Order placed", uuid.New())
	require.NoError(t, err)
	note = note.WithOrder(orderID).WithMetadata(ledger.Metadata{
		"override_from":   "PROCESSING",
		"override_to":     "SHIPPED",
		"override_reason": "carrier picked up without scan",
	})

	err = repo.UpdateByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder, "", note)
	require.NoError(t, err)

	updated, err := repo.FindByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder)
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionStatusCompleted, updated.Status)
	assert.Equal(t, "SHIPPED", updated.Metadata["override_to"])
}

func TestGormTransactionRepository_UpdateByOrderAndType_CreatesWhenAbsent(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	template, err := ledger.NewTransaction(ledger.TransactionTypeOrder, decimal.NewFromFloat(20.00), "Order placed", uuid.New())
	require.NoError(t, err)
	template = template.WithOrder(orderID)

	err = repo.UpdateByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder, ledger.TransactionStatusCancelled, template)
	require.NoError(t, err)

	created, err := repo.FindByOrderAndType(ctx, orderID, ledger.TransactionTypeOrder)
	require.NoError(t, err)
	assert.Equal(t, ledger.TransactionStatusCancelled, created.Status)
}

func TestGormTransactionRepository_UpdateByOrderAndType_MissingWithoutTemplate(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)

	err := repo.UpdateByOrderAndType(context.Background(), uuid.New(), ledger.TransactionTypeOrder, ledger.TransactionStatusCompleted, nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionRepository_FindAll_Filters(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	agentID := uuid.New()
	require.NoError(t, repo.Append(ctx, orderEntry(t, uuid.New(), buyerID, "20.00")))
	require.NoError(t, repo.Append(ctx, orderEntry(t, uuid.New(), uuid.New(), "35.50")))

	payout, err := ledger.NewTransaction(ledger.TransactionTypePayout, decimal.NewFromFloat(18.00), "Agent payout", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, payout.WithOrder(uuid.New()).WithAgent(agentID).WithStatus(ledger.TransactionStatusCompleted)))

	byType, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"type": ledger.TransactionTypeOrder},
	})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byBuyer, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"buyer_id": buyerID},
	})
	require.NoError(t, err)
	require.Len(t, byBuyer, 1)

	byAgent, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"agent_id": agentID, "status": ledger.TransactionStatusCompleted},
	})
	require.NoError(t, err)
	require.Len(t, byAgent, 1)
	assert.True(t, byAgent[0].IsOutflow())

	since := time.Now().Add(-time.Hour)
	recent, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"occurred_from": since},
	})
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestGormTransactionRepository_Aggregate(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormTransactionRepository(db)
	ctx := context.Background()

	bigBuyer := uuid.New()
	smallBuyer := uuid.New()

	first := orderEntry(t, uuid.New(), bigBuyer, "100.00").WithStatus(ledger.TransactionStatusCompleted)
	require.NoError(t, repo.Append(ctx, first))
	second := orderEntry(t, uuid.New(), smallBuyer, "40.00").WithStatus(ledger.TransactionStatusCompleted)
	require.NoError(t, repo.Append(ctx, second))
	pending := orderEntry(t, uuid.New(), smallBuyer, "15.00")
	require.NoError(t, repo.Append(ctx, pending))

	payout, err := ledger.NewTransaction(ledger.TransactionTypePayout, decimal.NewFromFloat(90.00), "Agent payout", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, payout.WithOrder(uuid.New()).WithAgent(uuid.New()).WithStatus(ledger.TransactionStatusCompleted)))

	summary, err := repo.Aggregate(ctx)
	require.NoError(t, err)

	byType := map[ledger.TransactionType]ledger.TypeTotal{}
	for _, bucket := range summary.ByType {
		byType[bucket.Type] = bucket
	}
	require.Contains(t, byType, ledger.TransactionTypeOrder)
	assert.Equal(t, int64(3), byType[ledger.TransactionTypeOrder].Count)
	assert.True(t, byType[ledger.TransactionTypeOrder].Amount.Equal(decimal.NewFromFloat(155.00)))
	require.Contains(t, byType, ledger.TransactionTypePayout)
	assert.True(t, byType[ledger.TransactionTypePayout].Amount.Equal(decimal.NewFromFloat(90.00)))

	byStatus := map[ledger.TransactionStatus]int64{}
	for _, bucket := range summary.ByStatus {
		byStatus[bucket.Status] = bucket.Count
	}
	assert.Equal(t, int64(3), byStatus[ledger.TransactionStatusCompleted])
	assert.Equal(t, int64(1), byStatus[ledger.TransactionStatusPending])

	// 100.00 + 40.00 completed orders minus the 90.00 payout; the pending
	// order is excluded
	assert.True(t, summary.NetBalance.Equal(decimal.NewFromFloat(50.00)),
		"net balance was %s", summary.NetBalance)

	require.NotEmpty(t, summary.TopBuyers)
	assert.Equal(t, bigBuyer, summary.TopBuyers[0].BuyerID)
	assert.True(t, summary.TopBuyers[0].Amount.Equal(decimal.NewFromFloat(100.00)))

	// Everything occurred just now, so the trend has a single bucket
	require.Len(t, summary.Trend, 1)
	assert.Equal(t, int64(3), summary.Trend[0].Count)
}
