package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/shopcore/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore/shopcore-backend/pkg/errors"
)

func TestClassifierPredicates(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	classifier := NewClassifier(conn)
	ctx := context.Background()

	healthy := uuid.New()  // in stock, above threshold
	depleted := uuid.New() // low stock, fully reserved
	empty := uuid.New()    // out of stock and low stock at once
	spare := uuid.New()    // in stock, above threshold
	ghost := uuid.New()    // untracked, ignored by every classifier query
	parked := uuid.New()   // inactive, ignored by every classifier query

	seedRecord(t, conn, models.StockRecord{ProductID: healthy, StockQty: 10, ReservedQty: 2, MinStockLevel: 1}, nil)
	seedRecord(t, conn, models.StockRecord{ProductID: depleted, StockQty: 3, ReservedQty: 3, MinStockLevel: 5}, nil)
	seedRecord(t, conn, models.StockRecord{ProductID: empty, StockQty: 0, MinStockLevel: 5}, nil)
	seedRecord(t, conn, models.StockRecord{ProductID: spare, StockQty: 7, MinStockLevel: 1}, nil)
	seedRecord(t, conn, models.StockRecord{ProductID: ghost, StockQty: 0, MinStockLevel: 5},
		map[string]any{"track_inventory": false})
	seedRecord(t, conn, models.StockRecord{ProductID: parked, StockQty: 0, MinStockLevel: 5},
		map[string]any{"is_active": false})

	t.Run("low stock ordered most depleted first", func(t *testing.T) {
		rows, err := classifier.ListLowStock(ctx, 50)
		if err != nil {
			t.Fatalf("list low stock: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 low-stock rows, got %d", len(rows))
		}
		if rows[0].ProductID != empty || rows[1].ProductID != depleted {
			t.Fatalf("unexpected order: %v then %v", rows[0].ProductID, rows[1].ProductID)
		}
	})

	t.Run("out of stock", func(t *testing.T) {
		rows, err := classifier.ListOutOfStock(ctx, 50)
		if err != nil {
			t.Fatalf("list out of stock: %v", err)
		}
		if len(rows) != 1 || rows[0].ProductID != empty {
			t.Fatalf("expected only the empty record, got %d rows", len(rows))
		}
	})

	t.Run("in stock requires unreserved units", func(t *testing.T) {
		rows, err := classifier.ListInStock(ctx, 50)
		if err != nil {
			t.Fatalf("list in stock: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 in-stock rows, got %d", len(rows))
		}
		found := map[uuid.UUID]bool{}
		for _, row := range rows {
			found[row.ProductID] = true
		}
		if !found[healthy] || !found[spare] {
			t.Fatalf("expected healthy and spare, got %+v", found)
		}
	})

	t.Run("stats overlap", func(t *testing.T) {
		stats, err := classifier.CountStats(ctx)
		if err != nil {
			t.Fatalf("count stats: %v", err)
		}
		// The empty record counts as both low stock and out of stock; the
		// classifications are not a partition.
		want := Stats{InStock: 2, LowStock: 2, OutOfStock: 1}
		if stats != want {
			t.Fatalf("stats = %+v, want %+v", stats, want)
		}
	})

	t.Run("stock range", func(t *testing.T) {
		rows, err := classifier.ListByStockRange(ctx, 1, 7, 50)
		if err != nil {
			t.Fatalf("list by range: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows in [1,7], got %d", len(rows))
		}
		if rows[0].ProductID != depleted || rows[1].ProductID != spare {
			t.Fatalf("unexpected order: %v then %v", rows[0].ProductID, rows[1].ProductID)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := classifier.ListByStockRange(ctx, 8, 2, 50)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestClassifierLimit(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	classifier := NewClassifier(conn)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedRecord(t, conn, models.StockRecord{ProductID: uuid.New(), StockQty: i, MinStockLevel: 10}, nil)
	}

	rows, err := classifier.ListLowStock(ctx, 3)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected limit of 3 to apply, got %d rows", len(rows))
	}
}
