package controllers

import (
	"net/http"

	"github.com/shopcore/shopcore-backend/api/responses"
	"github.com/shopcore/shopcore-backend/api/validators"
	product "github.com/shopcore/shopcore-backend/internal/products"
	"github.com/shopcore/shopcore-backend/pkg/logger"
	"github.com/shopcore/shopcore-backend/pkg/pagination"
)

type createProductRequest struct {
	SKU             string   `json:"sku" validate:"required,max=64"`
	Title           string   `json:"title" validate:"required,max=256"`
	Tags            []string `json:"tags" validate:"max=32"`
	PriceCents      int      `json:"price_cents" validate:"gte=0"`
	IsActive        bool     `json:"is_active"`
	InitialStockQty int      `json:"initial_stock_qty" validate:"gte=0"`
	MinStockLevel   int      `json:"min_stock_level" validate:"gte=0"`
	TrackInventory  bool     `json:"track_inventory"`
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(ctx, product.CreateProductInput{
			SKU:             req.SKU,
			Title:           req.Title,
			Tags:            req.Tags,
			PriceCents:      req.PriceCents,
			IsActive:        req.IsActive,
			InitialStockQty: req.InitialStockQty,
			MinStockLevel:   req.MinStockLevel,
			TrackInventory:  req.TrackInventory,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		onlyActive, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListProducts(ctx, product.ListProductsInput{
			OnlyActive: onlyActive,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteProduct(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
