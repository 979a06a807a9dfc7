package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DUC-ANH-GHEL/mimi-petstore-be/config"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/delivery/http/middleware"
	v1 "github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/delivery/http/v1"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/infrastructure/cache"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/repository/postgres"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/internal/usecase"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/logger"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/storage"
	"github.com/DUC-ANH-GHEL/mimi-petstore-be/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	catalogRepo := postgres.NewCatalogRepository(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// In-memory cache: 30m default expiration, sweep hourly
	memCache := cache.NewMemoryCache(30*time.Minute, time.Hour)

	mux := http.NewServeMux()

	// Storage Module (R2)
	r2Storage, err := storage.NewR2Storage(
		context.Background(),
		cfg.R2AccountID,
		cfg.R2AccessKeyID,
		cfg.R2AccessKeySecret,
		cfg.R2BucketName,
		cfg.R2PublicURL,
		cfg.R2UploadTimeout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
	}
	uploadHandler := v1.NewUploadHandler(r2Storage, cfg.MaxUploadSizeMB)

	// Catalog Module
	catalogUC := usecase.NewCatalogUsecase(catalogRepo, txManager, memCache, cfg.CacheProductTTL)
	bulkUC := usecase.NewBulkUsecase(catalogRepo, txManager)
	catalogHandler := v1.NewCatalogHandler(catalogUC)
	adminCatalogHandler := v1.NewAdminCatalogHandler(catalogUC, bulkUC)

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Uploads
	mux.Handle("POST /api/v1/upload", adminOnly(uploadHandler.UploadFile))

	// Catalog (Public)
	mux.HandleFunc("GET /api/v1/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/v1/products/{slug}", catalogHandler.GetProductBySlug)

	// Admin Product Management
	mux.Handle("GET /api/v1/admin/products", adminOnly(adminCatalogHandler.ListProducts))
	mux.Handle("GET /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.GetProduct))
	mux.Handle("POST /api/v1/admin/products", adminOnly(adminCatalogHandler.CreateProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.UpdateProduct))
	mux.Handle("DELETE /api/v1/admin/products/{id}", adminOnly(adminCatalogHandler.DeleteProduct))
	mux.Handle("POST /api/v1/admin/products/bulk", adminOnly(adminCatalogHandler.BulkProducts))
	mux.Handle("POST /api/v1/admin/products/generate-variants", adminOnly(adminCatalogHandler.GenerateVariants))
	mux.Handle("PATCH /api/v1/admin/products/{id}/variants/bulk", adminOnly(adminCatalogHandler.BulkVariants))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Msgf("Server starting on %s", addr)

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rateLimiter.Shutdown()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	pgxPool.Close()

	logger.ServiceStop("mimi-petstore-api")
}
