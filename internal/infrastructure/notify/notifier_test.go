package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "orderdesk.notifications.order.delivery_code",
		channelFor("orderdesk.notifications", "order.delivery_code"))
	assert.Equal(t, "orderdesk.notifications",
		channelFor("orderdesk.notifications", ""))
}

func TestPayloadFor(t *testing.T) {
	payload := payloadFor(shared.Notification{
		UserID:  "user-1",
		Topic:   "order.staged",
		Message: "Order staged for verification",
		Data:    map[string]any{"order_id": "abc"},
	})

	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "order.staged", payload.Topic)
	assert.NotZero(t, payload.Timestamp)

	// Audience-wide notifications omit the user field on the wire
	data, err := json.Marshal(payloadFor(shared.Notification{
		Audience: shared.RoleManager,
		Topic:    "catalog.low_stock",
		Message:  "Widget is low on stock",
	}))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "user_id")
	assert.Contains(t, string(data), `"audience":"manager"`)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	notifier := NewLogNotifier(zap.New(core))

	err := notifier.Notify(context.Background(), shared.Notification{
		Audience: shared.RoleManager,
		Topic:    "catalog.low_stock",
		Message:  "Widget is low on stock",
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "catalog.low_stock", fields["topic"])
	assert.Equal(t, "manager", fields["audience"])
}
