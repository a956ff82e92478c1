package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPaymentRef = "PAYREF-00042"

func testItems() []ItemInput {
	return []ItemInput{
		{
			ProductID:   uuid.New(),
			ProductName: "Widget",
			SKU:         "WGT-001",
			Quantity:    3,
			UnitPrice:   valueobject.NewMoneyUSDFromFloat(19.99),
		},
		{
			ProductID:   uuid.New(),
			ProductName: "Gadget",
			SKU:         "GDT-002",
			Quantity:    1,
			UnitPrice:   valueobject.NewMoneyUSDFromFloat(5.50),
		},
	}
}

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	hash, err := HashDeliveryCode("123456")
	require.NoError(t, err)
	o, err := NewOrder(uuid.New(), testItems(), decimal.NewFromFloat(65.47), testPaymentRef, "1 Main St", hash)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	buyerID := uuid.New()
	hash, err := HashDeliveryCode("654321")
	require.NoError(t, err)

	tests := []struct {
		name          string
		buyerID       uuid.UUID
		items         []ItemInput
		declaredTotal decimal.Decimal
		paymentRef    string
		address       string
		codeHash      string
		expectError   bool
		errorCode     string
	}{
		{
			name:          "valid order",
			buyerID:       buyerID,
			items:         testItems(),
			declaredTotal: decimal.NewFromFloat(65.47),
			paymentRef:    testPaymentRef,
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   false,
		},
		{
			name:          "empty buyer",
			buyerID:       uuid.Nil,
			items:         testItems(),
			declaredTotal: decimal.NewFromFloat(65.47),
			paymentRef:    testPaymentRef,
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
		{
			name:          "no items",
			buyerID:       buyerID,
			items:         []ItemInput{},
			declaredTotal: decimal.Zero,
			paymentRef:    testPaymentRef,
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
		{
			name:          "payment reference too short",
			buyerID:       buyerID,
			items:         testItems(),
			declaredTotal: decimal.NewFromFloat(65.47),
			paymentRef:    "PAYREF-0042",
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
		{
			name:          "payment reference too long",
			buyerID:       buyerID,
			items:         testItems(),
			declaredTotal: decimal.NewFromFloat(65.47),
			paymentRef:    "PAYREF-000042",
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
		{
			name:          "empty shipping address",
			buyerID:       buyerID,
			items:         testItems(),
			declaredTotal: decimal.NewFromFloat(65.47),
			paymentRef:    testPaymentRef,
			address:       "",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
		{
			name: "zero quantity item",
			buyerID: buyerID,
			items: []ItemInput{
				{ProductID: uuid.New(), ProductName: "Widget", SKU: "WGT-001", Quantity: 0, UnitPrice: valueobject.NewMoneyUSDFromFloat(19.99)},
			},
			declaredTotal: decimal.Zero,
			paymentRef:    testPaymentRef,
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
		{
			name:          "declared total mismatch",
			buyerID:       buyerID,
			items:         testItems(),
			declaredTotal: decimal.NewFromFloat(99.99),
			paymentRef:    testPaymentRef,
			address:       "1 Main St",
			codeHash:      hash,
			expectError:   true,
			errorCode:     "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrder(tt.buyerID, tt.items, tt.declaredTotal, tt.paymentRef, tt.address, tt.codeHash)

			if tt.expectError {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errorCode, domainErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, OrderStatusPendingVerification, o.Status)
			assert.False(t, o.PaymentVerified)
			assert.Equal(t, PayoutStatusNone, o.PayoutStatus)
			assert.Len(t, o.Items, 2)
			assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(65.47)))
			assert.Len(t, o.GetDomainEvents(), 1)
			assert.Equal(t, EventTypeOrderPlaced, o.GetDomainEvents()[0].EventType())
		})
	}
}

func TestOrder_UnitPriceFrozen(t *testing.T) {
	o := newTestOrder(t)

	// Line amounts are computed at placement and do not depend on the catalog
	assert.True(t, o.Items[0].Amount.Equal(decimal.NewFromFloat(59.97)))
	assert.True(t, o.Items[1].Amount.Equal(decimal.NewFromFloat(5.50)))
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(65.47)))
}

func TestOrder_ApprovePayment(t *testing.T) {
	t.Run("with agent attribution", func(t *testing.T) {
		o := newTestOrder(t)
		agentID := uuid.New()
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)

		err = o.ApprovePayment(uuid.New(), &agentID, hash)
		require.NoError(t, err)

		assert.Equal(t, OrderStatusProcessing, o.Status)
		assert.True(t, o.PaymentVerified)
		require.NotNil(t, o.AgentID)
		assert.Equal(t, agentID, *o.AgentID)
		assert.Equal(t, PayoutStatusEligible, o.PayoutStatus)
		// 65.47 * 0.90 = 58.923, rounded half-up to 58.92
		assert.Equal(t, "58.92", o.PayoutAmount.StringFixed(2))
		assert.Equal(t, hash, o.DeliveryCodeHash)
	})

	t.Run("without agent attribution", func(t *testing.T) {
		o := newTestOrder(t)
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)

		err = o.ApprovePayment(uuid.New(), nil, hash)
		require.NoError(t, err)

		assert.Equal(t, OrderStatusProcessing, o.Status)
		assert.Nil(t, o.AgentID)
		assert.Equal(t, PayoutStatusNone, o.PayoutStatus)
		assert.True(t, o.PayoutAmount.IsZero())
	})

	t.Run("already processing", func(t *testing.T) {
		o := newTestOrder(t)
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)
		require.NoError(t, o.ApprovePayment(uuid.New(), nil, hash))

		err = o.ApprovePayment(uuid.New(), nil, hash)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
	})

	t.Run("cancelled order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.RejectPayment(uuid.New(), "bad reference"))
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)

		err = o.ApprovePayment(uuid.New(), nil, hash)
		require.Error(t, err)
	})
}

func TestOrder_PayoutRounding(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		quantity int64
		expected string
	}{
		{"exact cents", 10.00, 1, "9.00"},
		{"rounds up", 11.23, 1, "10.11"},     // 10.107
		{"exact millis", 10.50, 1, "9.45"},   // 9.450
		{"rounds down", 99.99, 1, "89.99"},   // 89.991
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []ItemInput{
				{ProductID: uuid.New(), ProductName: "Widget", SKU: "W-1", Quantity: tt.quantity, UnitPrice: valueobject.NewMoneyUSDFromFloat(tt.price)},
			}
			total := decimal.NewFromFloat(tt.price).Mul(decimal.NewFromInt(tt.quantity))
			hash, err := HashDeliveryCode("123456")
			require.NoError(t, err)
			o, err := NewOrder(uuid.New(), items, total, testPaymentRef, "1 Main St", hash)
			require.NoError(t, err)

			agentID := uuid.New()
			require.NoError(t, o.ApprovePayment(uuid.New(), &agentID, hash))
			assert.Equal(t, tt.expected, o.PayoutAmount.StringFixed(2))
		})
	}
}

func TestOrder_RejectPayment(t *testing.T) {
	t.Run("pending order", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.RejectPayment(uuid.New(), "reference not found")
		require.NoError(t, err)

		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.False(t, o.PaymentVerified)
		assert.Equal(t, "reference not found", o.CancelReason)
		assert.True(t, o.IsTerminal())
	})

	t.Run("already processing", func(t *testing.T) {
		o := newTestOrder(t)
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)
		require.NoError(t, o.ApprovePayment(uuid.New(), nil, hash))

		err = o.RejectPayment(uuid.New(), "too late")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
	})

	t.Run("already cancelled", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.RejectPayment(uuid.New(), "first"))

		err := o.RejectPayment(uuid.New(), "second")
		require.Error(t, err)
	})
}

func TestOrder_MarkShipped(t *testing.T) {
	o := newTestOrder(t)
	hash, err := HashDeliveryCode("999999")
	require.NoError(t, err)

	// Cannot ship before verification
	require.Error(t, o.MarkShipped())

	require.NoError(t, o.ApprovePayment(uuid.New(), nil, hash))
	require.NoError(t, o.MarkShipped())
	assert.Equal(t, OrderStatusShipped, o.Status)

	// Shipping twice conflicts
	require.Error(t, o.MarkShipped())
}

func TestOrder_ConfirmDelivery(t *testing.T) {
	shippedOrder := func(t *testing.T, code string) *Order {
		t.Helper()
		o := newTestOrder(t)
		hash, err := HashDeliveryCode(code)
		require.NoError(t, err)
		require.NoError(t, o.ApprovePayment(uuid.New(), nil, hash))
		require.NoError(t, o.MarkShipped())
		return o
	}

	t.Run("correct code", func(t *testing.T) {
		o := shippedOrder(t, "482910")

		err := o.ConfirmDelivery("482910")
		require.NoError(t, err)
		assert.Equal(t, OrderStatusReceived, o.Status)
		assert.True(t, o.IsTerminal())
	})

	t.Run("wrong code", func(t *testing.T) {
		o := shippedOrder(t, "482910")

		err := o.ConfirmDelivery("000000")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CODE", domainErr.Code)
		assert.Equal(t, OrderStatusShipped, o.Status)
	})

	t.Run("already received", func(t *testing.T) {
		o := shippedOrder(t, "482910")
		require.NoError(t, o.ConfirmDelivery("482910"))

		err := o.ConfirmDelivery("482910")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
	})

	t.Run("not yet shipped", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.ConfirmDelivery("123456")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STATE_CONFLICT", domainErr.Code)
	})
}

func TestOrder_MarkPayoutPaid(t *testing.T) {
	t.Run("eligible payout", func(t *testing.T) {
		o := newTestOrder(t)
		agentID := uuid.New()
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)
		require.NoError(t, o.ApprovePayment(uuid.New(), &agentID, hash))

		err = o.MarkPayoutPaid(uuid.New())
		require.NoError(t, err)
		assert.Equal(t, PayoutStatusPaid, o.PayoutStatus)
	})

	t.Run("double payout", func(t *testing.T) {
		o := newTestOrder(t)
		agentID := uuid.New()
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)
		require.NoError(t, o.ApprovePayment(uuid.New(), &agentID, hash))
		require.NoError(t, o.MarkPayoutPaid(uuid.New()))

		err = o.MarkPayoutPaid(uuid.New())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_ELIGIBLE", domainErr.Code)
	})

	t.Run("no agent attribution", func(t *testing.T) {
		o := newTestOrder(t)
		hash, err := HashDeliveryCode("999999")
		require.NoError(t, err)
		require.NoError(t, o.ApprovePayment(uuid.New(), nil, hash))

		err = o.MarkPayoutPaid(uuid.New())
		require.Error(t, err)
	})
}

func TestOrder_OverrideStatus(t *testing.T) {
	t.Run("jump outside transition table", func(t *testing.T) {
		o := newTestOrder(t)

		// PENDING_VERIFICATION -> SHIPPED is not a legal transition
		assert.False(t, o.Status.CanTransitionTo(OrderStatusShipped))

		err := o.OverrideStatus(OrderStatusShipped, "customer escalation, payment confirmed out of band")
		require.NoError(t, err)
		assert.Equal(t, OrderStatusShipped, o.Status)
	})

	t.Run("missing reason", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.OverrideStatus(OrderStatusShipped, "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("invalid target", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.OverrideStatus(OrderStatus("UNKNOWN"), "because")
		require.Error(t, err)
	})

	t.Run("same status", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.OverrideStatus(OrderStatusPendingVerification, "noop")
		require.Error(t, err)
	})
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPendingVerification, OrderStatusProcessing, true},
		{OrderStatusPendingVerification, OrderStatusCancelled, true},
		{OrderStatusPendingVerification, OrderStatusShipped, false},
		{OrderStatusPendingVerification, OrderStatusReceived, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, false},
		{OrderStatusProcessing, OrderStatusReceived, false},
		{OrderStatusShipped, OrderStatusReceived, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusReceived, OrderStatusShipped, false},
		{OrderStatusCancelled, OrderStatusPendingVerification, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_TotalQuantity(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, int64(4), o.TotalQuantity())
}
