package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore-backend/internal/inventory"
	"github.com/shopcore/shopcore-backend/pkg/db"
	"github.com/shopcore/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore/shopcore-backend/pkg/errors"
	"github.com/shopcore/shopcore-backend/pkg/logger"
)

// Service exposes catalog management operations. Product and stock record
// lifecycles are coupled here: creating a product with starting stock creates
// its ledger row in the same transaction, and removing a product takes the
// ledger row with it.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU             string
	Title           string
	Tags            []string
	PriceCents      int
	IsActive        bool
	InitialStockQty int
	MinStockLevel   int
	TrackInventory  bool
}

type service struct {
	repo     *Repository
	stock    *inventory.Repository
	dbClient *db.Client
	cache    inventory.AvailabilityCache
	logg     *logger.Logger

	defaultMaxStockLevel int
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Repo                 *Repository
	Stock                *inventory.Repository
	DBClient             *db.Client
	Cache                inventory.AvailabilityCache
	Logger               *logger.Logger
	DefaultMaxStockLevel int
}

// NewService constructs the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("product repository required")
	}
	if params.Stock == nil {
		return nil, errors.New("stock repository required")
	}
	if params.DBClient == nil {
		return nil, errors.New("db client required")
	}
	maxLevel := params.DefaultMaxStockLevel
	if maxLevel <= 0 {
		maxLevel = 1000
	}
	return &service{
		repo:                 params.Repo,
		stock:                params.Stock,
		dbClient:             params.DBClient,
		cache:                params.Cache,
		logg:                 params.Logger,
		defaultMaxStockLevel: maxLevel,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	record := &models.Product{
		ID:         uuid.New(),
		SKU:        strings.TrimSpace(input.SKU),
		Title:      strings.TrimSpace(input.Title),
		Tags:       pq.StringArray(input.Tags),
		PriceCents: input.PriceCents,
		IsActive:   input.IsActive,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		if input.InitialStockQty > 0 || input.TrackInventory {
			stockRecord := &models.StockRecord{
				ProductID:      record.ID,
				StockQty:       input.InitialStockQty,
				MinStockLevel:  input.MinStockLevel,
				MaxStockLevel:  s.defaultMaxStockLevel,
				TrackInventory: input.TrackInventory,
				IsActive:       true,
			}
			if err := s.stock.WithTx(tx).Create(ctx, stockRecord); err != nil {
				return err
			}
			record.Stock = stockRecord
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use").
				WithDetails(map[string]any{"sku": record.SKU})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithProductID(ctx, record.ID.String()), "product.created")
	}
	return toDTO(record), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	record, err := s.repo.FindByIDWithStock(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no such product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return toDTO(record), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, next, err := s.repo.List(ctx, input.OnlyActive, input.Pagination)
	if err != nil {
		if strings.Contains(err.Error(), "cursor") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		result.Products = append(result.Products, *toDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.stock.WithTx(tx).DeleteByProduct(ctx, id); err != nil {
			return err
		}
		affected, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no such product")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	// The ledger row is gone; any cached availability must go with it.
	if s.cache != nil {
		s.cache.InvalidateAvailability(ctx, id)
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithProductID(ctx, id.String()), "product.deleted")
	}
	return nil
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

func validateCreateInput(input CreateProductInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.SKU) == "" {
		details["sku"] = "required"
	}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if input.PriceCents < 0 {
		details["price_cents"] = "must not be negative"
	}
	if input.InitialStockQty < 0 {
		details["initial_stock_qty"] = "must not be negative"
	}
	if input.MinStockLevel < 0 {
		details["min_stock_level"] = "must not be negative"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product payload").WithDetails(details)
	}
	return nil
}
