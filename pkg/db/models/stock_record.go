package models

import (
	"time"

	"github.com/google/uuid"
)

// StockRecord is the quantity ledger for one product. AvailableQty is always
// derived from the two stored counters and never persisted.
type StockRecord struct {
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	StockQty       int       `gorm:"column:stock_qty;not null;default:0"`
	ReservedQty    int       `gorm:"column:reserved_qty;not null;default:0"`
	MinStockLevel  int       `gorm:"column:min_stock_level;not null;default:0"`
	MaxStockLevel  int       `gorm:"column:max_stock_level;not null;default:1000"`
	TrackInventory bool      `gorm:"column:track_inventory;not null;default:true"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	IsDeleted      bool      `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableQty returns stock minus reservations.
func (r StockRecord) AvailableQty() int {
	return r.StockQty - r.ReservedQty
}

// IsLowStock is evaluated on StockQty, not availability: a fully reserved
// product is still "low stock" only when its physical count dips under the
// threshold.
func (r StockRecord) IsLowStock() bool {
	return r.StockQty <= r.MinStockLevel
}

// IsInStock reports whether unreserved units remain.
func (r StockRecord) IsInStock() bool {
	return r.AvailableQty() > 0
}
