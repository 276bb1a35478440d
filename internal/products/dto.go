package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/shopcore-backend/pkg/db/models"
)

// ProductDTO is the catalog row shape returned by the service.
type ProductDTO struct {
	ID         uuid.UUID     `json:"id"`
	SKU        string        `json:"sku"`
	Title      string        `json:"title"`
	Tags       []string      `json:"tags,omitempty"`
	PriceCents int           `json:"price_cents"`
	IsActive   bool          `json:"is_active"`
	Stock      *StockSummary `json:"stock,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// StockSummary is the ledger view embedded in product reads.
type StockSummary struct {
	StockQty       int  `json:"stock_qty"`
	ReservedQty    int  `json:"reserved_qty"`
	AvailableQty   int  `json:"available_qty"`
	MinStockLevel  int  `json:"min_stock_level"`
	TrackInventory bool `json:"track_inventory"`
}

func toDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:         product.ID,
		SKU:        product.SKU,
		Title:      product.Title,
		Tags:       []string(product.Tags),
		PriceCents: product.PriceCents,
		IsActive:   product.IsActive,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
	if product.Stock != nil && !product.Stock.IsDeleted {
		dto.Stock = &StockSummary{
			StockQty:       product.Stock.StockQty,
			ReservedQty:    product.Stock.ReservedQty,
			AvailableQty:   product.Stock.AvailableQty(),
			MinStockLevel:  product.Stock.MinStockLevel,
			TrackInventory: product.Stock.TrackInventory,
		}
	}
	return dto
}
