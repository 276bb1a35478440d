package product

import (
	"github.com/shopcore/shopcore-backend/pkg/pagination"
)

// ListProductsInput captures the inputs needed to paginate the catalog.
type ListProductsInput struct {
	OnlyActive bool
	Pagination pagination.Params
}

// ProductListResult is one catalog page plus the cursor for the next.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
