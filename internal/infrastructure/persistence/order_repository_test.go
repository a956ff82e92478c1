package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupOrderTestDB creates an in-memory SQLite database for testing
func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&order.Order{}, &order.OrderItem{}))
	return db
}

func seedOrder(t *testing.T, repo *GormOrderRepository, buyerID uuid.UUID) *order.Order {
	t.Helper()

	hash, err := order.HashDeliveryCode("123456")
	require.NoError(t, err)

	items := []order.ItemInput{
		{
			ProductID:   uuid.New(),
			ProductName: "Widget",
			SKU:         "GDT-001",
			Quantity:    2,
			UnitPrice:   valueobject.NewMoneyUSDFromFloat(10.00),
		},
	}
	o, err := order.NewOrder(buyerID, items, decimal.NewFromFloat(20.00), "PAYREF-00042", "1 Main St", hash)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), o))
	return o
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	o := seedOrder(t, repo, buyerID)

	retrieved, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, retrieved.ID)
	assert.Equal(t, buyerID, retrieved.BuyerID)
	assert.Equal(t, order.OrderStatusPendingVerification, retrieved.Status)
	require.Len(t, retrieved.Items, 1)
	assert.Equal(t, "GDT-001", retrieved.Items[0].SKU)
	assert.True(t, retrieved.TotalAmount.Equal(decimal.NewFromFloat(20.00)))
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := seedOrder(t, repo, uuid.New())

	agentID := uuid.New()
	hash, err := order.HashDeliveryCode("654321")
	require.NoError(t, err)
	require.NoError(t, o.ApprovePayment(uuid.New(), &agentID, hash))
	require.NoError(t, repo.SaveWithLock(ctx, o))

	retrieved, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusProcessing, retrieved.Status)
	assert.True(t, retrieved.PaymentVerified)
	require.NotNil(t, retrieved.AgentID)
	assert.Equal(t, agentID, *retrieved.AgentID)
	assert.True(t, retrieved.PayoutAmount.Equal(decimal.NewFromFloat(18.00)))
	assert.Equal(t, order.PayoutStatusEligible, retrieved.PayoutStatus)
}

func TestGormOrderRepository_SaveWithLock_StaleVersion(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := seedOrder(t, repo, uuid.New())

	first, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, first.RejectPayment(uuid.New(), "reference mismatch"))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	hash, err := order.HashDeliveryCode("654321")
	require.NoError(t, err)
	require.NoError(t, second.ApprovePayment(uuid.New(), nil, hash))
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	current, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, current.Status)
}

func TestGormOrderRepository_FindAll_Filters(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	buyerA := uuid.New()
	buyerB := uuid.New()
	orderA := seedOrder(t, repo, buyerA)
	seedOrder(t, repo, buyerB)

	agentID := uuid.New()
	hash, err := order.HashDeliveryCode("654321")
	require.NoError(t, err)
	require.NoError(t, orderA.ApprovePayment(uuid.New(), &agentID, hash))
	require.NoError(t, repo.SaveWithLock(ctx, orderA))

	byBuyer, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"buyer_id": buyerA},
	})
	require.NoError(t, err)
	require.Len(t, byBuyer, 1)
	assert.Equal(t, orderA.ID, byBuyer[0].ID)

	processing, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"status": order.OrderStatusProcessing},
	})
	require.NoError(t, err)
	require.Len(t, processing, 1)
	require.Len(t, processing[0].Items, 1)

	eligible, err := repo.FindAll(ctx, shared.Filter{
		Page: 1, PageSize: 10,
		Filters: map[string]interface{}{"payout_status": order.PayoutStatusEligible},
	})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, orderA.ID, eligible[0].ID)

	count, err := repo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"agent_id": agentID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
