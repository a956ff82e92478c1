package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ledger"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// LedgerService exposes read access to the transaction ledger. Writes happen
// inside the order and catalog services; there is no public write path.
type LedgerService struct {
	ledgerRepo ledger.TransactionRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledgerRepo ledger.TransactionRepository) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo}
}

// GetByID retrieves a single ledger entry, scoped to entries the actor may see
func (s *LedgerService) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, tx) {
		return nil, shared.ErrForbidden
	}
	response := ToTransactionResponse(tx)
	return &response, nil
}

// Query retrieves ledger entries with filtering and pagination. Buyers see
// entries on their own orders, sales agents see entries attributed to them,
// managers and admins see everything.
func (s *LedgerService) Query(ctx context.Context, actor shared.Actor, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "occurred_at"
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

	if filter.Type != nil {
		domainFilter.Filters["type"] = filter.Type.String()
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = filter.Status.String()
	}
	if filter.OrderID != nil {
		domainFilter.Filters["related_order_id"] = *filter.OrderID
	}
	if filter.BuyerID != nil {
		domainFilter.Filters["buyer_id"] = *filter.BuyerID
	}
	if filter.AgentID != nil {
		domainFilter.Filters["agent_id"] = *filter.AgentID
	}
	if filter.OccurredFrom != nil {
		domainFilter.Filters["occurred_from"] = *filter.OccurredFrom
	}
	if filter.OccurredTo != nil {
		domainFilter.Filters["occurred_to"] = *filter.OccurredTo
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

	txs, err := s.ledgerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.ledgerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, ToTransactionResponse(tx))
	}
	return responses, total, nil
}

// Summary computes ledger aggregates; privileged roles only
func (s *LedgerService) Summary(ctx context.Context, actor shared.Actor) (*ledger.Summary, error) {
	if !actor.IsPrivileged() {
		return nil, shared.ErrForbidden
	}
	return s.ledgerRepo.Aggregate(ctx)
}

func (s *LedgerService) canView(actor shared.Actor, tx *ledger.Transaction) bool {
	if actor.IsPrivileged() {
		return true
	}
	if actor.Role == shared.RoleSales {
		return tx.AgentID != nil && *tx.AgentID == actor.UserID
	}
	return tx.BuyerID != nil && *tx.BuyerID == actor.UserID
}
