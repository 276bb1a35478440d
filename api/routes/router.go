package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopcore/shopcore-backend/api/controllers"
	"github.com/shopcore/shopcore-backend/api/middleware"
	"github.com/shopcore/shopcore-backend/internal/inventory"
	product "github.com/shopcore/shopcore-backend/internal/products"
	"github.com/shopcore/shopcore-backend/pkg/config"
	"github.com/shopcore/shopcore-backend/pkg/logger"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	Dependencies map[string]controllers.Pinger
	Products     product.Service
	Inventory    inventory.Service
	Classifier   *inventory.Classifier
	Metrics      *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Dependencies))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.ProductCreate(params.Products, logg))
			r.Get("/", controllers.ProductList(params.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(params.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(params.Products, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/low-stock", controllers.StockLowList(params.Classifier, logg))
			r.Get("/out-of-stock", controllers.StockOutList(params.Classifier, logg))
			r.Get("/in-stock", controllers.StockInList(params.Classifier, logg))
			r.Get("/range", controllers.StockRangeList(params.Classifier, logg))
			r.Get("/stats", controllers.StockStats(params.Classifier, logg))

			r.Route("/products/{productId}", func(r chi.Router) {
				r.Get("/availability", controllers.StockAvailability(params.Inventory, logg))
				r.Put("/stock", controllers.StockSet(params.Inventory, logg))
				r.Post("/reserve", controllers.StockReserve(params.Inventory, logg))
				r.Post("/release", controllers.StockRelease(params.Inventory, logg))
				r.Post("/reduce", controllers.StockReduce(params.Inventory, logg))
			})
		})
	})

	return r
}
