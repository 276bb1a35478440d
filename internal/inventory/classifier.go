package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopcore/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore/shopcore-backend/pkg/errors"
	"github.com/shopcore/shopcore-backend/pkg/pagination"
)

// Classifier answers the read-side stock-status questions used by dashboards
// and restock alerts. Every query runs over the active, tracked subset; the
// three predicates are not mutually exclusive (a product can be low-stock and
// in-stock at once).
type Classifier struct {
	db *gorm.DB
}

// NewClassifier builds a classifier over the provided GORM DB.
func NewClassifier(db *gorm.DB) *Classifier {
	return &Classifier{db: db}
}

// Stats aggregates the three status tallies.
type Stats struct {
	InStock    int64 `json:"in_stock"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

func (c *Classifier) trackedScope(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("track_inventory = TRUE AND is_active = TRUE AND is_deleted = FALSE")
}

// ListLowStock returns tracked records at or under their restock threshold,
// most depleted first. Evaluated on stock_qty, not availability.
func (c *Classifier) ListLowStock(ctx context.Context, limit int) ([]models.StockRecord, error) {
	var rows []models.StockRecord
	err := c.trackedScope(ctx).
		Where("stock_qty <= min_stock_level").
		Order("stock_qty ASC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).
		Error
	return rows, err
}

// ListOutOfStock returns tracked records with no physical units left.
func (c *Classifier) ListOutOfStock(ctx context.Context, limit int) ([]models.StockRecord, error) {
	var rows []models.StockRecord
	err := c.trackedScope(ctx).
		Where("stock_qty <= 0").
		Order("updated_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).
		Error
	return rows, err
}

// ListInStock returns tracked records with unreserved units available.
func (c *Classifier) ListInStock(ctx context.Context, limit int) ([]models.StockRecord, error) {
	var rows []models.StockRecord
	err := c.trackedScope(ctx).
		Where("(stock_qty - reserved_qty) > 0").
		Order("updated_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).
		Error
	return rows, err
}

// ListByStockRange returns active records whose physical count falls inside
// [minStock, maxStock].
func (c *Classifier) ListByStockRange(ctx context.Context, minStock, maxStock, limit int) ([]models.StockRecord, error) {
	if minStock > maxStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min stock must not exceed max stock")
	}
	var rows []models.StockRecord
	err := c.db.WithContext(ctx).
		Model(&models.StockRecord{}).
		Where("is_active = TRUE AND is_deleted = FALSE").
		Where("stock_qty BETWEEN ? AND ?", minStock, maxStock).
		Order("stock_qty ASC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).
		Error
	return rows, err
}

// CountStats tallies the three classifications in one pass per predicate.
func (c *Classifier) CountStats(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := c.trackedScope(ctx).
		Where("(stock_qty - reserved_qty) > 0").
		Count(&stats.InStock).Error; err != nil {
		return Stats{}, err
	}
	if err := c.trackedScope(ctx).
		Where("stock_qty <= min_stock_level").
		Count(&stats.LowStock).Error; err != nil {
		return Stats{}, err
	}
	if err := c.trackedScope(ctx).
		Where("stock_qty <= 0").
		Count(&stats.OutOfStock).Error; err != nil {
		return Stats{}, err
	}

	return stats, nil
}
