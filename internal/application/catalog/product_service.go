package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/catalog"
	"github.com/orderdesk/backend/internal/domain/ledger"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles catalog business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	ledgerRepo     ledger.TransactionRepository
	eventPublisher shared.EventPublisher
	notifier       shared.Notifier
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, ledgerRepo ledger.TransactionRepository, notifier shared.Notifier, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a product. Sales agents submit listings that await review;
// managers and admins create directly sellable products.
func (s *ProductService) Create(ctx context.Context, actor shared.Actor, req CreateProductRequest) (*ProductResponse, error) {
	if actor.Role != shared.RoleSales && !actor.CanManageCatalog() {
		return nil, shared.ErrForbidden
	}

	if existing, err := s.productRepo.FindBySKU(ctx, req.SKU); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Product with SKU %s already exists", req.SKU))
	}

	status := catalog.ProductStatusActive
	var agentID *uuid.UUID
	if actor.Role == shared.RoleSales {
		status = catalog.ProductStatusPending
		id := actor.UserID
		agentID = &id
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.Price, req.Quantity, req.LowStockThreshold, agentID, status)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Approve moves a pending listing into the sellable pool and records the
// stock value entering it in the ledger
func (s *ProductService) Approve(ctx context.Context, actor shared.Actor, productID uuid.UUID) (*ProductResponse, error) {
	if !actor.CanManageCatalog() {
		return nil, shared.ErrForbidden
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Approve(); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	entry, err := ledger.NewTransaction(
		ledger.TransactionTypeAdjustment,
		product.Price.Mul(decimal.NewFromInt(product.Quantity)),
		fmt.Sprintf("Product %s approved, %d units entered the sellable pool", product.SKU, product.Quantity),
		actor.UserID,
	)
	if err == nil {
		entry.WithProduct(product.ID).WithQuantity(product.Quantity).
			WithStatus(ledger.TransactionStatusCompleted)
		if product.AgentID != nil {
			entry.WithAgent(*product.AgentID)
		}
		if appendErr := s.ledgerRepo.Append(ctx, entry); appendErr != nil {
			s.logger.Warn("failed to record approval ledger entry",
				zap.String("product_id", product.ID.String()),
				zap.Error(appendErr))
		}
	}

	s.notifySubmitter(ctx, product, "product.approved",
		fmt.Sprintf("Your listing %s was approved", product.SKU))

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Reject declines a pending listing
func (s *ProductService) Reject(ctx context.Context, actor shared.Actor, productID uuid.UUID, req RejectProductRequest) (*ProductResponse, error) {
	if !actor.CanManageCatalog() {
		return nil, shared.ErrForbidden
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.Reject(req.Reason); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.notifySubmitter(ctx, product, "product.rejected",
		fmt.Sprintf("Your listing %s was rejected: %s", product.SKU, req.Reason))

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock restates the absolute on-hand quantity after a physical count
// and records the correction in the ledger
func (s *ProductService) AdjustStock(ctx context.Context, actor shared.Actor, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if !actor.CanManageCatalog() {
		return nil, shared.ErrForbidden
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	previous := product.Quantity
	if err := product.AdjustQuantity(req.Quantity, req.Reason); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	delta := req.Quantity - previous
	entry, err := ledger.NewTransaction(
		ledger.TransactionTypeAdjustment,
		product.Price.Mul(decimal.NewFromInt(delta)),
		fmt.Sprintf("Stock adjustment for %s: %d -> %d (%s)", product.SKU, previous, req.Quantity, req.Reason),
		actor.UserID,
	)
	if err == nil {
		entry.WithProduct(product.ID).
			WithQuantity(delta).
			WithStatus(ledger.TransactionStatusCompleted).
			WithMetadata(ledger.Metadata{
				"previous_quantity": previous,
				"new_quantity":      req.Quantity,
				"reason":            req.Reason,
			})
		if appendErr := s.ledgerRepo.Append(ctx, entry); appendErr != nil {
			s.logger.Warn("failed to record adjustment ledger entry",
				zap.String("product_id", product.ID.String()),
				zap.Error(appendErr))
		}
	}

	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Update changes product pricing, threshold or description
func (s *ProductService) Update(ctx context.Context, actor shared.Actor, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if !actor.CanManageCatalog() {
		return nil, shared.ErrForbidden
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		price, err := valueobject.NewMoney(*req.Price, valueobject.USD)
		if err != nil {
			return nil, err
		}
		if err := product.UpdatePrice(price); err != nil {
			return nil, err
		}
	}
	if req.LowStockThreshold != nil {
		if err := product.SetLowStockThreshold(*req.LowStockThreshold); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		product.Description = *req.Description
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, actor shared.Actor, filter ProductListFilter) ([]ProductResponse, int64, error) {
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
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.AgentID != nil {
		domainFilter.Filters["agent_id"] = *filter.AgentID
	}
	if filter.BelowThreshold {
		domainFilter.Filters["below_threshold"] = true
	}
	// Buyers only ever see sellable products; sales agents additionally see
	// their own submissions
	if actor.Role == shared.RoleBuyer {
		domainFilter.Filters["status"] = catalog.ProductStatusActive.String()
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToProductResponse(p))
	}
	return responses, total, nil
}

func (s *ProductService) notifySubmitter(ctx context.Context, product *catalog.Product, topic, message string) {
	if s.notifier == nil || product.AgentID == nil {
		return
	}
	err := s.notifier.Notify(ctx, shared.Notification{
		UserID:  product.AgentID.String(),
		Topic:   topic,
		Message: message,
		Data:    map[string]any{"product_id": product.ID.String(), "sku": product.SKU},
	})
	if err != nil {
		s.logger.Warn("failed to notify submitter",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
	}
	product.ClearDomainEvents()
}
