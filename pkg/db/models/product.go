package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the minimal catalog row the reservation subsystem joins against.
// Catalog browsing/search lives in a separate service; this table only has to
// answer "does the product exist" and own the stock record lifecycle.
type Product struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU        string         `gorm:"column:sku;not null;uniqueIndex"`
	Title      string         `gorm:"column:title;not null"`
	Tags       pq.StringArray `gorm:"column:tags;type:text[]"`
	PriceCents int            `gorm:"column:price_cents;not null;default:0"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	Stock      *StockRecord   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
