package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/catalog"
	"github.com/orderdesk/backend/internal/domain/ledger"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// OrderService drives the fulfillment pipeline: placement, payment
// verification, delivery confirmation and commission settlement
type OrderService struct {
	orderRepo      order.OrderRepository
	productRepo    catalog.ProductRepository
	ledgerRepo     ledger.TransactionRepository
	eventPublisher shared.EventPublisher
	notifier       shared.Notifier
	mailer         shared.Mailer
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	productRepo catalog.ProductRepository,
	ledgerRepo ledger.TransactionRepository,
	notifier shared.Notifier,
	mailer shared.Mailer,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		notifier:    notifier,
		mailer:      mailer,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PlaceOrder stages a new order. Stock is deducted up front with a
// conditional decrement per product; any failure rolls back the decrements
// already made and nothing is persisted. The delivery code generated here is
// hashed and discarded, a fresh one is issued at payment approval.
func (s *OrderService) PlaceOrder(ctx context.Context, actor shared.Actor, req PlaceOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order must contain at least one item")
	}

	// Freeze unit prices from the current catalog
	inputs := make([]order.ItemInput, 0, len(req.Items))
	products := make([]*catalog.Product, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsSellable() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Product %s is not available for sale", product.SKU))
		}
		products = append(products, product)
		inputs = append(inputs, order.ItemInput{
			ProductID:   product.ID,
			ProductName: product.Name,
			SKU:         product.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   valueobject.NewMoneyUSD(product.Price),
		})
	}

	code, err := order.GenerateDeliveryCode()
	if err != nil {
		return nil, err
	}
	hash, err := order.HashDeliveryCode(code)
	if err != nil {
		return nil, err
	}
	o, err := order.NewOrder(actor.UserID, inputs, req.DeclaredTotal, req.PaymentReference, req.ShippingAddress, hash)
	if err != nil {
		return nil, err
	}

	// Deduct stock one product at a time; a failed deduction undoes the
	// earlier ones before reporting which product ran short
	deducted := make([]PlaceOrderItemInput, 0, len(req.Items))
	for i, item := range req.Items {
		if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollbackDecrements(ctx, deducted)
			if shared.IsDomainError(err, "INSUFFICIENT_STOCK") {
				return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock for %s", products[i].SKU))
			}
			return nil, err
		}
		deducted = append(deducted, item)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		s.rollbackDecrements(ctx, deducted)
		return nil, err
	}

	entry, err := ledger.NewTransaction(ledger.TransactionTypeOrder, o.TotalAmount,
		fmt.Sprintf("Order placed, awaiting payment verification (%s)", o.PaymentReference), actor.UserID)
	if err == nil {
		entry.WithOrder(o.ID).WithBuyer(o.BuyerID).WithQuantity(o.TotalQuantity()).
			WithMetadata(ledger.Metadata{"payment_reference": o.PaymentReference})
		if appendErr := s.ledgerRepo.Append(ctx, entry); appendErr != nil {
			s.logger.Error("failed to record order ledger entry",
				zap.String("order_id", o.ID.String()),
				zap.Error(appendErr))
		}
	}

	s.checkLowStock(ctx, req.Items)

	s.notify(ctx, shared.Notification{
		Audience: shared.RoleManager,
		Topic:    "order.staged",
		Message:  fmt.Sprintf("New order for %s awaiting payment verification", o.TotalAmount.StringFixed(2)),
		Data:     map[string]any{"order_id": o.ID.String()},
	})

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// VerifyPayment approves or rejects a pending order's payment. Approval
// reissues the delivery code and delivers the plaintext to the buyer over
// both channels; rejection cancels the order and restocks every item.
func (s *OrderService) VerifyPayment(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req VerifyPaymentRequest) (*OrderResponse, error) {
	if !actor.CanVerifyPayments() {
		return nil, shared.ErrForbidden
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case VerifyActionApprove:
		return s.approvePayment(ctx, actor, o)
	case VerifyActionReject:
		return s.rejectPayment(ctx, actor, o, req.Reason)
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Unknown verification action %q", req.Action))
	}
}

func (s *OrderService) approvePayment(ctx context.Context, actor shared.Actor, o *order.Order) (*OrderResponse, error) {
	// Sales attribution comes from the first line item's product
	var agentID *uuid.UUID
	if first := o.FirstItem(); first != nil {
		product, err := s.productRepo.FindByID(ctx, first.ProductID)
		if err == nil && product.AgentID != nil {
			agentID = product.AgentID
		}
	}

	code, err := order.GenerateDeliveryCode()
	if err != nil {
		return nil, err
	}
	hash, err := order.HashDeliveryCode(code)
	if err != nil {
		return nil, err
	}

	if err := o.ApprovePayment(actor.UserID, agentID, hash); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	if err := s.ledgerRepo.UpdateByOrderAndType(ctx, o.ID, ledger.TransactionTypeOrder,
		ledger.TransactionStatusCompleted, s.orderEntryTemplate(o, actor,
			ledger.Metadata{"verified_by": actor.UserID.String()})); err != nil {
		s.logger.Error("failed to settle order ledger entry",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	// The plaintext exists only here; both deliveries are independent and
	// best-effort
	s.notify(ctx, shared.Notification{
		UserID:  o.BuyerID.String(),
		Topic:   "order.delivery_code",
		Message: fmt.Sprintf("Payment confirmed. Your delivery code is %s", code),
		Data:    map[string]any{"order_id": o.ID.String()},
	})
	if s.mailer != nil {
		if err := s.mailer.Send(ctx, o.BuyerID.String(), "Your delivery code",
			fmt.Sprintf("Payment for order %s was confirmed. Present code %s to the courier.", o.ID, code)); err != nil {
			s.logger.Warn("failed to mail delivery code",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
		}
	}

	s.notify(ctx, shared.Notification{
		Audience: shared.RoleAdmin,
		Topic:    "order.payment_verified",
		Message:  fmt.Sprintf("Order %s approved by %s", o.ID, actor.UserID),
		Data:     map[string]any{"order_id": o.ID.String()},
	})

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

func (s *OrderService) rejectPayment(ctx context.Context, actor shared.Actor, o *order.Order, reason string) (*OrderResponse, error) {
	if err := o.RejectPayment(actor.UserID, reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	// Put every deducted unit back on the shelf
	for _, item := range o.Items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to restock rejected order item",
				zap.String("order_id", o.ID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}

	if err := s.ledgerRepo.UpdateByOrderAndType(ctx, o.ID, ledger.TransactionTypeOrder,
		ledger.TransactionStatusCancelled, s.orderEntryTemplate(o, actor,
			ledger.Metadata{"rejected_by": actor.UserID.String(), "reason": o.CancelReason})); err != nil {
		s.logger.Error("failed to cancel order ledger entry",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	s.notify(ctx, shared.Notification{
		UserID:  o.BuyerID.String(),
		Topic:   "order.rejected",
		Message: fmt.Sprintf("Your order was rejected: %s", o.CancelReason),
		Data:    map[string]any{"order_id": o.ID.String()},
	})

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// ConfirmDelivery completes the pipeline: the buyer presents the delivery
// code, and on a match the order reaches its terminal RECEIVED state
func (s *OrderService) ConfirmDelivery(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req ConfirmDeliveryRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actor.UserID && !actor.IsPrivileged() {
		return nil, shared.ErrForbidden
	}

	if err := o.ConfirmDelivery(req.Code); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// MarkShipped moves a verified order into transit
func (s *OrderService) MarkShipped(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	if !actor.IsPrivileged() {
		return nil, shared.ErrForbidden
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkShipped(); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	s.notify(ctx, shared.Notification{
		UserID:  o.BuyerID.String(),
		Topic:   "order.shipped",
		Message: "Your order is on its way",
		Data:    map[string]any{"order_id": o.ID.String()},
	})

	response := ToOrderResponse(o)
	return &response, nil
}

// ProcessPayout settles the attributed agent's commission exactly once and
// records it as a payout ledger entry
func (s *OrderService) ProcessPayout(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	if !actor.CanProcessPayouts() {
		return nil, shared.ErrForbidden
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkPayoutPaid(actor.UserID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	// The entry carries the payout magnitude; the payout type marks it as an
	// outflow when the ledger is balanced
	entry, err := ledger.NewTransaction(ledger.TransactionTypePayout, o.PayoutAmount,
		fmt.Sprintf("Agent commission for order %s", o.ID), actor.UserID)
	if err == nil {
		entry.WithOrder(o.ID).WithStatus(ledger.TransactionStatusCompleted)
		if o.AgentID != nil {
			entry.WithAgent(*o.AgentID)
		}
		if appendErr := s.ledgerRepo.Append(ctx, entry); appendErr != nil {
			s.logger.Error("failed to record payout ledger entry",
				zap.String("order_id", o.ID.String()),
				zap.Error(appendErr))
		}
	}

	if o.AgentID != nil {
		s.notify(ctx, shared.Notification{
			UserID:  o.AgentID.String(),
			Topic:   "payout.paid",
			Message: fmt.Sprintf("Commission of %s paid for order %s", o.PayoutAmount.StringFixed(2), o.ID),
			Data:    map[string]any{"order_id": o.ID.String()},
		})
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// OverrideStatus is the admin escape hatch around the transition table. The
// reason is mandatory and lands as an operator note on the order's ledger
// entry, so every forced jump leaves an audit trail.
func (s *OrderService) OverrideStatus(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req OverrideStatusRequest) (*OrderResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := o.Status
	if err := o.OverrideStatus(order.OrderStatus(req.Status), req.Reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	note := ledger.Metadata{
		"override_by":     actor.UserID.String(),
		"override_from":   previous.String(),
		"override_to":     req.Status,
		"override_reason": req.Reason,
	}
	if err := s.ledgerRepo.UpdateByOrderAndType(ctx, o.ID, ledger.TransactionTypeOrder,
		"", s.orderEntryTemplate(o, actor, note)); err != nil {
		s.logger.Error("failed to record status override note",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order, scoped to its owner unless the actor is
// privileged or the attributed agent
func (s *OrderService) GetByID(ctx context.Context, actor shared.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, o) {
		return nil, shared.ErrForbidden
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// List retrieves orders with filtering and pagination. Non-privileged actors
// only ever see their own records.
func (s *OrderService) List(ctx context.Context, actor shared.Actor, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.PayoutStatus != nil {
		domainFilter.Filters["payout_status"] = string(*filter.PayoutStatus)
	}
	if filter.BuyerID != nil {
		domainFilter.Filters["buyer_id"] = *filter.BuyerID
	}
	if filter.AgentID != nil {
		domainFilter.Filters["agent_id"] = *filter.AgentID
	}

	switch {
	case actor.IsPrivileged():
		// Full visibility
	case actor.Role == shared.RoleSales:
		domainFilter.Filters["agent_id"] = actor.UserID
		delete(domainFilter.Filters, "buyer_id")
	default:
		domainFilter.Filters["buyer_id"] = actor.UserID
		delete(domainFilter.Filters, "agent_id")
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, ToOrderResponse(o))
	}
	return responses, total, nil
}

func (s *OrderService) canView(actor shared.Actor, o *order.Order) bool {
	if actor.IsPrivileged() || o.BuyerID == actor.UserID {
		return true
	}
	return o.AgentID != nil && *o.AgentID == actor.UserID
}

func (s *OrderService) rollbackDecrements(ctx context.Context, deducted []PlaceOrderItemInput) {
	for _, item := range deducted {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("failed to roll back stock decrement",
				zap.String("product_id", item.ProductID.String()),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}

// checkLowStock re-reads the touched products and raises best-effort alerts
// for any that crossed their threshold
func (s *OrderService) checkLowStock(ctx context.Context, items []PlaceOrderItemInput) {
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil || !product.IsBelowThreshold() {
			continue
		}
		s.notify(ctx, shared.Notification{
			Audience: shared.RoleManager,
			Topic:    "catalog.low_stock",
			Message:  fmt.Sprintf("%s (%s) is low on stock: %d left, threshold %d", product.Name, product.SKU, product.Quantity, product.LowStockThreshold),
			Data:     map[string]any{"product_id": product.ID.String(), "sku": product.SKU},
		})
	}
}

func (s *OrderService) orderEntryTemplate(o *order.Order, actor shared.Actor, meta ledger.Metadata) *ledger.Transaction {
	entry, err := ledger.NewTransaction(ledger.TransactionTypeOrder, o.TotalAmount,
		fmt.Sprintf("Order placed, awaiting payment verification (%s)", o.PaymentReference), actor.UserID)
	if err != nil {
		return nil
	}
	return entry.WithOrder(o.ID).WithBuyer(o.BuyerID).WithQuantity(o.TotalQuantity()).WithMetadata(meta)
}

func (s *OrderService) notify(ctx context.Context, n shared.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("failed to deliver notification",
			zap.String("topic", n.Topic),
			zap.Error(err))
	}
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
	o.ClearDomainEvents()
}
