package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, status ProductStatus) *Product {
	t.Helper()
	p, err := NewProduct("WGT-001", "Widget", decimal.NewFromFloat(19.99), 10, 3, nil, status)
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestNewProduct(t *testing.T) {
	tests := []struct {
		name        string
		sku         string
		productName string
		price       decimal.Decimal
		quantity    int64
		threshold   int64
		status      ProductStatus
		expectError bool
	}{
		{
			name:        "valid active product",
			sku:         "WGT-001",
			productName: "Widget",
			price:       decimal.NewFromFloat(19.99),
			quantity:    10,
			threshold:   3,
			status:      ProductStatusActive,
			expectError: false,
		},
		{
			name:        "valid pending product",
			sku:         "WGT-002",
			productName: "Widget Pro",
			price:       decimal.NewFromFloat(29.99),
			quantity:    0,
			threshold:   0,
			status:      ProductStatusPending,
			expectError: false,
		},
		{
			name:        "empty sku",
			sku:         "",
			productName: "Widget",
			price:       decimal.NewFromFloat(19.99),
			quantity:    10,
			threshold:   3,
			status:      ProductStatusActive,
			expectError: true,
		},
		{
			name:        "empty name",
			sku:         "WGT-001",
			productName: "",
			price:       decimal.NewFromFloat(19.99),
			quantity:    10,
			threshold:   3,
			status:      ProductStatusActive,
			expectError: true,
		},
		{
			name:        "negative price",
			sku:         "WGT-001",
			productName: "Widget",
			price:       decimal.NewFromFloat(-1),
			quantity:    10,
			threshold:   3,
			status:      ProductStatusActive,
			expectError: true,
		},
		{
			name:        "negative quantity",
			sku:         "WGT-001",
			productName: "Widget",
			price:       decimal.NewFromFloat(19.99),
			quantity:    -5,
			threshold:   3,
			status:      ProductStatusActive,
			expectError: true,
		},
		{
			name:        "invalid status",
			sku:         "WGT-001",
			productName: "Widget",
			price:       decimal.NewFromFloat(19.99),
			quantity:    10,
			threshold:   3,
			status:      ProductStatus("DRAFT"),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.sku, tt.productName, tt.price, tt.quantity, tt.threshold, nil, tt.status)

			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.sku, p.SKU)
			assert.Equal(t, tt.status, p.Status)
			assert.Len(t, p.GetDomainEvents(), 1)
		})
	}
}

func TestProduct_Approve(t *testing.T) {
	t.Run("pending product", func(t *testing.T) {
		agentID := uuid.New()
		p, err := NewProduct("WGT-001", "Widget", decimal.NewFromFloat(19.99), 10, 3, &agentID, ProductStatusPending)
		require.NoError(t, err)
		p.ClearDomainEvents()

		require.NoError(t, p.Approve())
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.True(t, p.IsSellable())
		require.NotNil(t, p.AgentID)
		assert.Equal(t, agentID, *p.AgentID)
	})

	t.Run("already active", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusActive)

		err := p.Approve()
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
	})

	t.Run("rejected product", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusRejected)
		require.Error(t, p.Approve())
	})
}

func TestProduct_Reject(t *testing.T) {
	t.Run("pending product", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusPending)

		require.NoError(t, p.Reject("duplicate listing"))
		assert.Equal(t, ProductStatusRejected, p.Status)
		assert.False(t, p.IsSellable())
	})

	t.Run("rejecting twice conflicts", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusPending)
		require.NoError(t, p.Reject("duplicate listing"))

		err := p.Reject("still a duplicate")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
	})
}

func TestProduct_AdjustQuantity(t *testing.T) {
	t.Run("sets absolute quantity", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusActive)

		require.NoError(t, p.AdjustQuantity(7, "cycle count"))
		assert.Equal(t, int64(7), p.Quantity)
		assert.False(t, p.IsBelowThreshold())

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeStockAdjusted, events[0].EventType())
	})

	t.Run("crossing the threshold emits low stock", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusActive)

		require.NoError(t, p.AdjustQuantity(2, "shrinkage"))
		assert.True(t, p.IsBelowThreshold())

		events := p.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeLowStock, events[1].EventType())
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusActive)
		require.Error(t, p.AdjustQuantity(-1, "typo"))
	})

	t.Run("missing reason rejected", func(t *testing.T) {
		p := newTestProduct(t, ProductStatusActive)
		require.Error(t, p.AdjustQuantity(5, ""))
	})
}

func TestProduct_IsBelowThreshold(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int64
		threshold int64
		below     bool
	}{
		{"above threshold", 10, 3, false},
		{"at threshold", 3, 3, false},
		{"below threshold", 2, 3, true},
		{"zero stock", 0, 3, true},
		{"threshold disabled", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct("WGT-001", "Widget", decimal.NewFromFloat(19.99), tt.quantity, tt.threshold, nil, ProductStatusActive)
			require.NoError(t, err)
			assert.Equal(t, tt.below, p.IsBelowThreshold())
		})
	}
}

func TestProduct_CanFulfill(t *testing.T) {
	p := newTestProduct(t, ProductStatusActive)

	assert.True(t, p.CanFulfill(10))
	assert.True(t, p.CanFulfill(1))
	assert.False(t, p.CanFulfill(11))
	assert.False(t, p.CanFulfill(0))
}

func TestProduct_UpdatePrice(t *testing.T) {
	p := newTestProduct(t, ProductStatusActive)

	require.NoError(t, p.UpdatePrice(valueobject.NewMoneyUSDFromFloat(24.99)))
	assert.Equal(t, "24.99", p.Price.StringFixed(2))

	negative, err := valueobject.NewMoneyUSDFromString("-1.00")
	require.NoError(t, err)
	require.Error(t, p.UpdatePrice(negative))
}
