package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore/shopcore-backend/pkg/db"
	"github.com/shopcore/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore/shopcore-backend/pkg/errors"
	"github.com/shopcore/shopcore-backend/pkg/logger"
	"github.com/shopcore/shopcore-backend/pkg/metrics"
)

// Service exposes the reservation operations the order/checkout flow calls.
// Every mutation delegates to a single conditional write; a zero-row result is
// classified into an explicit outcome and never retried here, because a retry
// cannot make insufficient stock sufficient.
type Service interface {
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Release(ctx context.Context, productID uuid.UUID, qty int) error
	ConfirmAndReduce(ctx context.Context, productID uuid.UUID, qty int) error
	AvailableQuantity(ctx context.Context, productID uuid.UUID) (Availability, error)
	SetAbsoluteStock(ctx context.Context, productID uuid.UUID, qty int) error
}

// Availability is the point-in-time read result. When Tracked is false the
// quantity is the raw physical count and must not be used to gate purchases.
type Availability struct {
	Quantity int  `json:"quantity"`
	Tracked  bool `json:"tracked"`
}

// AvailabilityCache caches derived availability. Implementations must tolerate
// being nil-backed; the service invalidates on every successful mutation so a
// cached value can never outlive the write that changed it.
type AvailabilityCache interface {
	GetAvailability(ctx context.Context, productID uuid.UUID) (Availability, bool)
	SetAvailability(ctx context.Context, productID uuid.UUID, avail Availability)
	InvalidateAvailability(ctx context.Context, productID uuid.UUID)
}

// ProductChecker answers existence questions against the catalog. The
// reservation subsystem never creates products itself.
type ProductChecker interface {
	Exists(ctx context.Context, productID uuid.UUID) (bool, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	products ProductChecker
	cache    AvailabilityCache
	metrics  *metrics.InventoryMetrics
	logg     *logger.Logger

	defaultMaxStockLevel int
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Repo                 *Repository
	DBClient             *db.Client
	Products             ProductChecker
	Cache                AvailabilityCache
	Metrics              *metrics.InventoryMetrics
	Logger               *logger.Logger
	DefaultMaxStockLevel int
}

// NewService constructs the reservation service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	if params.DBClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	maxLevel := params.DefaultMaxStockLevel
	if maxLevel <= 0 {
		maxLevel = 1000
	}
	return &service{
		repo:                 params.Repo,
		dbClient:             params.DBClient,
		products:             params.Products,
		cache:                params.Cache,
		metrics:              params.Metrics,
		logg:                 params.Logger,
		defaultMaxStockLevel: maxLevel,
	}, nil
}

const (
	opReserve = "reserve"
	opRelease = "release"
	opReduce  = "reduce"
	opSet     = "set_quantity"
)

func (s *service) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := validateQuantity(qty); err != nil {
		s.metrics.IncOutcome(opReserve, metrics.OutcomeInvalid)
		return err
	}

	start := time.Now()
	affected, err := s.repo.Reserve(ctx, productID, qty)
	s.metrics.ObserveMutation(opReserve, time.Since(start))
	if err != nil {
		s.metrics.IncOutcome(opReserve, metrics.OutcomeError)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}
	if affected == 0 {
		return s.classifyReserveFailure(ctx, productID, qty)
	}

	s.invalidate(ctx, productID)
	s.metrics.IncOutcome(opReserve, metrics.OutcomeOK)
	s.info(ctx, productID, qty, "stock.reserved")
	return nil
}

func (s *service) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := validateQuantity(qty); err != nil {
		s.metrics.IncOutcome(opRelease, metrics.OutcomeInvalid)
		return err
	}

	start := time.Now()
	affected, err := s.repo.Release(ctx, productID, qty)
	s.metrics.ObserveMutation(opRelease, time.Since(start))
	if err != nil {
		s.metrics.IncOutcome(opRelease, metrics.OutcomeError)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
	}
	if affected == 0 {
		s.metrics.IncOutcome(opRelease, metrics.OutcomeRejected)
		return s.classifyDecrementFailure(ctx, productID, qty, pkgerrors.CodeInvalidRelease,
			"release exceeds reserved quantity")
	}

	s.invalidate(ctx, productID)
	s.metrics.IncOutcome(opRelease, metrics.OutcomeOK)
	s.info(ctx, productID, qty, "stock.released")
	return nil
}

func (s *service) ConfirmAndReduce(ctx context.Context, productID uuid.UUID, qty int) error {
	if err := validateQuantity(qty); err != nil {
		s.metrics.IncOutcome(opReduce, metrics.OutcomeInvalid)
		return err
	}

	start := time.Now()
	affected, err := s.repo.Reduce(ctx, productID, qty)
	s.metrics.ObserveMutation(opReduce, time.Since(start))
	if err != nil {
		s.metrics.IncOutcome(opReduce, metrics.OutcomeError)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reduce stock")
	}
	if affected == 0 {
		s.metrics.IncOutcome(opReduce, metrics.OutcomeRejected)
		return s.classifyDecrementFailure(ctx, productID, qty, pkgerrors.CodeInvalidReduction,
			"reduction exceeds stock or reserved quantity")
	}

	s.invalidate(ctx, productID)
	s.metrics.IncOutcome(opReduce, metrics.OutcomeOK)
	s.info(ctx, productID, qty, "stock.reduced")
	return nil
}

func (s *service) AvailableQuantity(ctx context.Context, productID uuid.UUID) (Availability, error) {
	if s.cache != nil {
		if avail, ok := s.cache.GetAvailability(ctx, productID); ok {
			return avail, nil
		}
	}

	record, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Availability{}, pkgerrors.New(pkgerrors.CodeNotFound, "no stock record for product")
		}
		return Availability{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}

	avail := Availability{Quantity: record.AvailableQty(), Tracked: true}
	if !record.TrackInventory {
		// Untracked products report the raw physical count; callers must check
		// Tracked before treating 0 as sold out.
		avail = Availability{Quantity: record.StockQty, Tracked: false}
	}

	if s.cache != nil {
		s.cache.SetAvailability(ctx, productID, avail)
	}
	return avail, nil
}

func (s *service) SetAbsoluteStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty < 0 {
		s.metrics.IncOutcome(opSet, metrics.OutcomeInvalid)
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative").
			WithDetails(map[string]any{"quantity": qty})
	}

	start := time.Now()
	affected, err := s.repo.SetQuantity(ctx, productID, qty)
	s.metrics.ObserveMutation(opSet, time.Since(start))
	if err != nil {
		s.metrics.IncOutcome(opSet, metrics.OutcomeError)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set stock quantity")
	}

	if affected == 0 {
		if err := s.createRecordLazily(ctx, productID, qty); err != nil {
			s.metrics.IncOutcome(opSet, metrics.OutcomeRejected)
			return err
		}
	}

	s.invalidate(ctx, productID)
	s.metrics.IncOutcome(opSet, metrics.OutcomeOK)
	s.info(ctx, productID, qty, "stock.set")
	return nil
}

// createRecordLazily handles the first stock-bearing update for a product that
// has no ledger row yet. A concurrent creator losing the insert race falls back
// to the conditional write it originally attempted.
func (s *service) createRecordLazily(ctx context.Context, productID uuid.UUID, qty int) error {
	if _, err := s.repo.Find(ctx, productID); err == nil {
		// Record exists but the guarded update skipped it: inactive or deleted.
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock record is not active")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}

	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product existence")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no such product")
	}

	record := &models.StockRecord{
		ProductID:      productID,
		StockQty:       qty,
		MaxStockLevel:  s.defaultMaxStockLevel,
		TrackInventory: true,
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "") {
			affected, retryErr := s.repo.SetQuantity(ctx, productID, qty)
			if retryErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, retryErr, "set stock quantity")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock record is not active")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock record")
	}
	return nil
}

func (s *service) classifyReserveFailure(ctx context.Context, productID uuid.UUID, qty int) error {
	record, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncOutcome(opReserve, metrics.OutcomeNotFound)
			return pkgerrors.New(pkgerrors.CodeNotFound, "no stock record for product")
		}
		s.metrics.IncOutcome(opReserve, metrics.OutcomeError)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}

	switch {
	case !record.TrackInventory:
		// Reserving an untracked product is a caller-side wiring problem worth
		// surfacing loudly, not silently allowing.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithProductID(ctx, productID.String()), "reserve called on untracked product")
		}
		s.metrics.IncOutcome(opReserve, metrics.OutcomeRejected)
		return pkgerrors.New(pkgerrors.CodeNotTracked, "product does not track inventory")
	case !record.IsActive:
		s.metrics.IncOutcome(opReserve, metrics.OutcomeNotFound)
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock record is not active")
	default:
		s.metrics.IncOutcome(opReserve, metrics.OutcomeRejected)
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"requested": qty,
				"available": record.AvailableQty(),
			})
	}
}

func (s *service) classifyDecrementFailure(ctx context.Context, productID uuid.UUID, qty int, code pkgerrors.Code, message string) error {
	record, err := s.repo.Find(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no stock record for product")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	if !record.IsActive {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stock record is not active")
	}

	// Either the caller's bookkeeping is off or it lost a race with another
	// release; both cases must be surfaced, never clamped to zero.
	if s.logg != nil {
		s.logg.Warn(s.logg.WithProductID(ctx, productID.String()), "stock decrement rejected by guard")
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"requested": qty,
		"stock":     record.StockQty,
		"reserved":  record.ReservedQty,
	})
}

func (s *service) invalidate(ctx context.Context, productID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateAvailability(ctx, productID)
	}
}

func (s *service) info(ctx context.Context, productID uuid.UUID, qty int, msg string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"product_id": productID.String(),
		"quantity":   qty,
	})
	s.logg.Info(ctx, msg)
}

func validateQuantity(qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": qty})
	}
	return nil
}
