package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopcore/shopcore-backend/api/controllers"
	"github.com/shopcore/shopcore-backend/api/routes"
	"github.com/shopcore/shopcore-backend/internal/inventory"
	product "github.com/shopcore/shopcore-backend/internal/products"
	"github.com/shopcore/shopcore-backend/pkg/config"
	"github.com/shopcore/shopcore-backend/pkg/db"
	"github.com/shopcore/shopcore-backend/pkg/logger"
	"github.com/shopcore/shopcore-backend/pkg/metrics"
	"github.com/shopcore/shopcore-backend/pkg/migrate"
	"github.com/shopcore/shopcore-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	dependencies := map[string]controllers.Pinger{"database": dbClient}

	// Redis is optional: without it the availability read path always hits the
	// database.
	var availabilityCache inventory.AvailabilityCache
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		availabilityCache = inventory.NewRedisAvailabilityCache(
			redisClient, cfg.Inventory.AvailabilityCacheTTL, logg)
		dependencies["redis"] = redisClient
	}

	registry := prometheus.NewRegistry()
	inventoryMetrics := metrics.NewInventoryMetrics(registry)

	stockRepo := inventory.NewRepository(dbClient.DB())

	productService, err := product.NewService(product.ServiceParams{
		Repo:                 product.NewRepository(dbClient.DB()),
		Stock:                stockRepo,
		DBClient:             dbClient,
		Cache:                availabilityCache,
		Logger:               logg,
		DefaultMaxStockLevel: cfg.Inventory.DefaultMaxStockLevel,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:                 stockRepo,
		DBClient:             dbClient,
		Products:             productService,
		Cache:                availabilityCache,
		Metrics:              inventoryMetrics,
		Logger:               logg,
		DefaultMaxStockLevel: cfg.Inventory.DefaultMaxStockLevel,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			Dependencies: dependencies,
			Products:     productService,
			Inventory:    inventoryService,
			Classifier:   inventory.NewClassifier(dbClient.DB()),
			Metrics:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
