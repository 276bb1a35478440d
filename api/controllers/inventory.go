package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/shopcore-backend/api/responses"
	"github.com/shopcore/shopcore-backend/api/validators"
	"github.com/shopcore/shopcore-backend/internal/inventory"
	"github.com/shopcore/shopcore-backend/pkg/db/models"
	"github.com/shopcore/shopcore-backend/pkg/logger"
	"github.com/shopcore/shopcore-backend/pkg/pagination"
)

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// setStockRequest uses a pointer so an explicit zero passes validation; setting
// a product to zero stock is a legitimate correction.
type setStockRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

type stockRecordDTO struct {
	ProductID     uuid.UUID `json:"product_id"`
	StockQty      int       `json:"stock_qty"`
	ReservedQty   int       `json:"reserved_qty"`
	AvailableQty  int       `json:"available_qty"`
	MinStockLevel int       `json:"min_stock_level"`
	MaxStockLevel int       `json:"max_stock_level"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toStockDTOs(rows []models.StockRecord) []stockRecordDTO {
	out := make([]stockRecordDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, stockRecordDTO{
			ProductID:     row.ProductID,
			StockQty:      row.StockQty,
			ReservedQty:   row.ReservedQty,
			AvailableQty:  row.AvailableQty(),
			MinStockLevel: row.MinStockLevel,
			MaxStockLevel: row.MaxStockLevel,
			UpdatedAt:     row.UpdatedAt,
		})
	}
	return out
}

func StockReserve(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMutation(svc.Reserve, "reserved", logg)
}

func StockRelease(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMutation(svc.Release, "released", logg)
}

func StockReduce(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return stockMutation(svc.ConfirmAndReduce, "reduced", logg)
}

func stockMutation(op func(ctx context.Context, productID uuid.UUID, qty int) error, status string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req quantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := op(ctx, productID, req.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"quantity":   req.Quantity,
			"status":     status,
		})
	}
}

func StockSet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req setStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.SetAbsoluteStock(ctx, productID, *req.Quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"quantity":   *req.Quantity,
			"status":     "set",
		})
	}
}

func StockAvailability(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		avail, err := svc.AvailableQuantity(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"quantity":   avail.Quantity,
			"tracked":    avail.Tracked,
		})
	}
}

func StockLowList(classifier *inventory.Classifier, logg *logger.Logger) http.HandlerFunc {
	return stockListing(classifier.ListLowStock, logg)
}

func StockOutList(classifier *inventory.Classifier, logg *logger.Logger) http.HandlerFunc {
	return stockListing(classifier.ListOutOfStock, logg)
}

func StockInList(classifier *inventory.Classifier, logg *logger.Logger) http.HandlerFunc {
	return stockListing(classifier.ListInStock, logg)
}

func stockListing(list func(ctx context.Context, limit int) ([]models.StockRecord, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := list(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"records": toStockDTOs(rows)})
	}
}

func StockRangeList(classifier *inventory.Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		minStock, err := validators.ParseQueryInt(r, "min", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		maxStock, err := validators.ParseQueryInt(r, "max", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := classifier.ListByStockRange(ctx, minStock, maxStock, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"records": toStockDTOs(rows)})
	}
}

func StockStats(classifier *inventory.Classifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		stats, err := classifier.CountStats(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
