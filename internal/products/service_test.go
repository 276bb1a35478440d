package product

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore-backend/internal/inventory"
	"github.com/shopcore/shopcore-backend/pkg/db"
	"github.com/shopcore/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore/shopcore-backend/pkg/errors"
)

type spyCache struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (c *spyCache) GetAvailability(context.Context, uuid.UUID) (inventory.Availability, bool) {
	return inventory.Availability{}, false
}

func (c *spyCache) SetAvailability(context.Context, uuid.UUID, inventory.Availability) {}

func (c *spyCache) InvalidateAvailability(_ context.Context, productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, productID)
}

type productHarness struct {
	svc   Service
	conn  *gorm.DB
	cache *spyCache
}

func newProductHarness(t *testing.T) *productHarness {
	t.Helper()
	conn := newTestDB(t)
	cache := &spyCache{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Stock:    inventory.NewRepository(conn),
		DBClient: db.FromGorm(conn),
		Cache:    cache,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &productHarness{svc: svc, conn: conn, cache: cache}
}

func (h *productHarness) stockRowCount(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := h.conn.Model(&models.StockRecord{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		t.Fatalf("count stock rows: %v", err)
	}
	return count
}

func TestCreateProductWithInitialStock(t *testing.T) {
	t.Parallel()

	h := newProductHarness(t)
	ctx := context.Background()

	dto, err := h.svc.CreateProduct(ctx, CreateProductInput{
		SKU:             "SKU-001",
		Title:           "Walnut Desk",
		Tags:            []string{"furniture", "office"},
		PriceCents:      129900,
		IsActive:        true,
		InitialStockQty: 5,
		MinStockLevel:   2,
		TrackInventory:  true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.Stock == nil {
		t.Fatal("expected stock summary on created product")
	}
	if dto.Stock.StockQty != 5 || dto.Stock.MinStockLevel != 2 || !dto.Stock.TrackInventory {
		t.Fatalf("unexpected stock summary: %+v", dto.Stock)
	}
	if h.stockRowCount(t, dto.ID) != 1 {
		t.Fatal("expected ledger row to be created alongside the product")
	}

	fetched, err := h.svc.GetProduct(ctx, dto.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if fetched.Stock == nil || fetched.Stock.AvailableQty != 5 {
		t.Fatalf("unexpected fetched stock: %+v", fetched.Stock)
	}
	if len(fetched.Tags) != 2 || fetched.Tags[0] != "furniture" {
		t.Fatalf("unexpected tags: %v", fetched.Tags)
	}
}

func TestCreateProductWithoutStock(t *testing.T) {
	t.Parallel()

	h := newProductHarness(t)
	ctx := context.Background()

	dto, err := h.svc.CreateProduct(ctx, CreateProductInput{
		SKU:      "SKU-002",
		Title:    "Gift Card",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.Stock != nil {
		t.Fatalf("expected no stock summary, got %+v", dto.Stock)
	}
	if h.stockRowCount(t, dto.ID) != 0 {
		t.Fatal("expected no ledger row for a stockless product")
	}

	ok, err := h.svc.Exists(ctx, dto.ID)
	if err != nil || !ok {
		t.Fatalf("expected product to exist: ok=%v err=%v", ok, err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	h := newProductHarness(t)
	ctx := context.Background()

	_, err := h.svc.CreateProduct(ctx, CreateProductInput{
		SKU:             "  ",
		Title:           "",
		PriceCents:      -1,
		InitialStockQty: -3,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || len(details) != 4 {
		t.Fatalf("expected 4 field errors, got %+v", typed.Details())
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	t.Parallel()

	h := newProductHarness(t)
	ctx := context.Background()

	input := CreateProductInput{SKU: "SKU-DUP", Title: "First", IsActive: true}
	if _, err := h.svc.CreateProduct(ctx, input); err != nil {
		t.Fatalf("create product: %v", err)
	}

	input.Title = "Second"
	_, err := h.svc.CreateProduct(ctx, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteProductRemovesLedger(t *testing.T) {
	t.Parallel()

	h := newProductHarness(t)
	ctx := context.Background()

	dto, err := h.svc.CreateProduct(ctx, CreateProductInput{
		SKU:             "SKU-003",
		Title:           "Lamp",
		IsActive:        true,
		InitialStockQty: 4,
		TrackInventory:  true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := h.svc.DeleteProduct(ctx, dto.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	if _, err := h.svc.GetProduct(ctx, dto.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if h.stockRowCount(t, dto.ID) != 0 {
		t.Fatal("expected ledger row to be removed with the product")
	}

	h.cache.mu.Lock()
	defer h.cache.mu.Unlock()
	if len(h.cache.invalidated) != 1 || h.cache.invalidated[0] != dto.ID {
		t.Fatalf("expected one cache invalidation for %s, got %v", dto.ID, h.cache.invalidated)
	}
}

func TestDeleteProductMissing(t *testing.T) {
	t.Parallel()

	h := newProductHarness(t)
	err := h.svc.DeleteProduct(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
