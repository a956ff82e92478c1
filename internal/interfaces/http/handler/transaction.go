package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/orderdesk/backend/internal/application/ledger"
)

// TransactionHandler handles ledger API endpoints. The ledger is read-only
// over HTTP; entries are written by the order and catalog services.
type TransactionHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(ledgerService *ledgerapp.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// Get handles GET /api/v1/transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	tx, err := h.ledgerService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// List handles GET /api/v1/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter ledgerapp.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transactions, total, err := h.ledgerService.Query(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, transactions, total, filter.Page, filter.PageSize)
}

// Summary handles GET /api/v1/transactions/summary
func (h *TransactionHandler) Summary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Trend handles GET /api/v1/transactions/trend
func (h *TransactionHandler) Trend(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary.Trend)
}

// TopBuyers handles GET /api/v1/transactions/top-buyers
func (h *TransactionHandler) TopBuyers(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary.TopBuyers)
}

// Balance handles GET /api/v1/transactions/balance
func (h *TransactionHandler) Balance(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"net_balance": summary.NetBalance})
}
