package catalog

import (
	"context"
	"fmt"

	"github.com/orderdesk/backend/internal/domain/catalog"
	"github.com/orderdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler handles LowStockEvent and alerts managers that a product
// has fallen below its replenishment threshold
type LowStockHandler struct {
	notifier shared.Notifier
	logger   *zap.Logger
}

// NewLowStockHandler creates a new handler for low stock events
func NewLowStockHandler(notifier shared.Notifier, logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{catalog.EventTypeLowStock}
}

// Handle processes a LowStockEvent by notifying the manager audience
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStockEvent, ok := event.(*catalog.LowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", catalog.EventTypeLowStock),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			catalog.EventTypeLowStock, event.EventType())
	}

	h.logger.Warn("product below low stock threshold",
		zap.String("product_id", lowStockEvent.AggregateID().String()),
		zap.String("sku", lowStockEvent.SKU),
		zap.Int64("quantity", lowStockEvent.Quantity),
		zap.Int64("threshold", lowStockEvent.Threshold),
	)

	err := h.notifier.Notify(ctx, shared.Notification{
		Audience: shared.RoleManager,
		Topic:    "catalog.low_stock",
		Message:  fmt.Sprintf("%s (%s) is low on stock: %d left, threshold %d", lowStockEvent.Name, lowStockEvent.SKU, lowStockEvent.Quantity, lowStockEvent.Threshold),
		Data: map[string]any{
			"product_id": lowStockEvent.AggregateID().String(),
			"sku":        lowStockEvent.SKU,
			"quantity":   lowStockEvent.Quantity,
			"threshold":  lowStockEvent.Threshold,
		},
	})
	if err != nil {
		// Alerting is best-effort, the stock change itself already happened
		h.logger.Warn("failed to deliver low stock alert",
			zap.String("sku", lowStockEvent.SKU),
			zap.Error(err))
	}
	return nil
}
