package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ledger"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// topBuyerLimit caps the buyer ranking in the ledger summary
const topBuyerLimit = 5

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var tx ledger.Transaction
	if err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindByOrderAndType finds the unique entry for an order+type pair
func (r *GormTransactionRepository) FindByOrderAndType(ctx context.Context, orderID uuid.UUID, txType ledger.TransactionType) (*ledger.Transaction, error) {
	var tx ledger.Transaction
	if err := r.db.WithContext(ctx).
		Where("related_order_id = ? AND type = ?", orderID, txType).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindAll finds transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*ledger.Transaction, error) {
	var txs []*ledger.Transaction
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.Transaction{}), filter)
	if err := query.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&ledger.Transaction{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Append inserts a new ledger entry. The unique index on (related_order_id,
// type) turns a duplicate into ErrAlreadyExists instead of a second row.
func (r *GormTransactionRepository) Append(ctx context.Context, tx *ledger.Transaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if err != nil && isUniqueViolation(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// UpdateByOrderAndType updates the status of the entry keyed by order+type,
// merging the template's metadata, or creates the entry from the template
// when absent. An empty status keeps the stored one.
func (r *GormTransactionRepository) UpdateByOrderAndType(ctx context.Context, orderID uuid.UUID, txType ledger.TransactionType, status ledger.TransactionStatus, template *ledger.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		var existing ledger.Transaction
		err := dbtx.Where("related_order_id = ? AND type = ?", orderID, txType).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if template == nil {
				return shared.ErrNotFound
			}
			if status != "" {
				template.Status = status
			}
			createErr := dbtx.Create(template).Error
			if createErr != nil && isUniqueViolation(createErr) {
				// Lost a race against a concurrent creator; fall through to
				// the update path on retry
				return shared.ErrAlreadyExists
			}
			return createErr
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"updated_at": time.Now(),
		}
		if status != "" && existing.Status != status {
			updates["status"] = status
		}
		if template != nil && len(template.Metadata) > 0 {
			merged := existing.Metadata
			if merged == nil {
				merged = ledger.Metadata{}
			}
			for k, v := range template.Metadata {
				merged[k] = v
			}
			updates["metadata"] = merged
		}
		if len(updates) == 1 {
			// Status already matches and there is nothing to merge
			return nil
		}
		if template != nil && template.CreatedBy != uuid.Nil {
			updates["updated_by"] = template.CreatedBy
		}

		return dbtx.Model(&ledger.Transaction{}).
			Where("id = ?", existing.ID).
			Updates(updates).Error
	})
}

type typeTotalRow struct {
	Type   string
	Count  int64
	Amount decimal.Decimal
}

type statusTotalRow struct {
	Status string
	Count  int64
}

type dailyVolumeRow struct {
	Day    string
	Count  int64
	Amount decimal.Decimal
}

type buyerVolumeRow struct {
	BuyerID uuid.UUID
	Count   int64
	Amount  decimal.Decimal
}

// Aggregate computes the ledger summary in four grouped queries plus one sum
func (r *GormTransactionRepository) Aggregate(ctx context.Context) (*ledger.Summary, error) {
	summary := &ledger.Summary{
		ByType:     []ledger.TypeTotal{},
		ByStatus:   []ledger.StatusTotal{},
		Trend:      []ledger.DailyVolume{},
		TopBuyers:  []ledger.BuyerVolume{},
		NetBalance: decimal.Zero,
	}

	var typeRows []typeTotalRow
	if err := r.db.WithContext(ctx).Model(&ledger.Transaction{}).
		Select("type, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Group("type").
		Order("type").
		Scan(&typeRows).Error; err != nil {
		return nil, err
	}
	for _, row := range typeRows {
		summary.ByType = append(summary.ByType, ledger.TypeTotal{
			Type:   ledger.TransactionType(row.Type),
			Count:  row.Count,
			Amount: row.Amount,
		})
	}

	var statusRows []statusTotalRow
	if err := r.db.WithContext(ctx).Model(&ledger.Transaction{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		summary.ByStatus = append(summary.ByStatus, ledger.StatusTotal{
			Status: ledger.TransactionStatus(row.Status),
			Count:  row.Count,
		})
	}

	since := time.Now().AddDate(0, 0, -30).Truncate(24 * time.Hour)
	var dailyRows []dailyVolumeRow
	if err := r.db.WithContext(ctx).Model(&ledger.Transaction{}).
		Select("DATE(occurred_at) as day, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Where("status = ? AND occurred_at >= ?", ledger.TransactionStatusCompleted, since).
		Group("DATE(occurred_at)").
		Order("day").
		Scan(&dailyRows).Error; err != nil {
		return nil, err
	}
	for _, row := range dailyRows {
		day, err := parseDay(row.Day)
		if err != nil {
			return nil, err
		}
		summary.Trend = append(summary.Trend, ledger.DailyVolume{
			Day:    day,
			Count:  row.Count,
			Amount: row.Amount,
		})
	}

	var buyerRows []buyerVolumeRow
	if err := r.db.WithContext(ctx).Model(&ledger.Transaction{}).
		Select("buyer_id, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Where("type = ? AND status = ? AND buyer_id IS NOT NULL",
			ledger.TransactionTypeOrder, ledger.TransactionStatusCompleted).
		Group("buyer_id").
		Order("amount DESC").
		Limit(topBuyerLimit).
		Scan(&buyerRows).Error; err != nil {
		return nil, err
	}
	for _, row := range buyerRows {
		summary.TopBuyers = append(summary.TopBuyers, ledger.BuyerVolume{
			BuyerID: row.BuyerID,
			Count:   row.Count,
			Amount:  row.Amount,
		})
	}

	// Net balance is completed order revenue minus completed payouts; both
	// sides are stored as magnitudes
	var balance struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&ledger.Transaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN -amount ELSE amount END), 0) as total",
			ledger.TransactionTypePayout).
		Where("status = ? AND type IN ?", ledger.TransactionStatusCompleted,
			[]ledger.TransactionType{ledger.TransactionTypeOrder, ledger.TransactionTypePayout}).
		Scan(&balance).Error; err != nil {
		return nil, err
	}
	summary.NetBalance = balance.Total

	return summary, nil
}

// applyFilter applies filter options to the query
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("occurred_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTransactionRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "related_order_id":
			query = query.Where("related_order_id = ?", value)
		case "buyer_id":
			query = query.Where("buyer_id = ?", value)
		case "agent_id":
			query = query.Where("agent_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "occurred_from":
			query = query.Where("occurred_at >= ?", value)
		case "occurred_to":
			query = query.Where("occurred_at <= ?", value)
		}
	}

	return query
}

// parseDay handles the DATE() formats the supported drivers return
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// isUniqueViolation matches unique constraint errors across drivers
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
