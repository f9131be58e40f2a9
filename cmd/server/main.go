// item360-backend/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erpmco/item360-backend/internal/api"
	"github.com/erpmco/item360-backend/internal/cache"
	"github.com/erpmco/item360-backend/internal/config"
	"github.com/erpmco/item360-backend/internal/repository/postgres"
	"github.com/erpmco/item360-backend/internal/service"
	"github.com/erpmco/item360-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	srvLog := logger.Component("server")
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		srvLog.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	itemRepo := postgres.NewItemRepository(db)
	purchaseRepo := postgres.NewPurchaseRepository(db)
	supplierRepo := postgres.NewSupplierRepository(db)
	allocationRepo := postgres.NewAllocationRepository(db)

	// Initialize cache; the service keeps working without redis
	overviewCache, err := cache.NewOverviewCache(cfg.Cache)
	if err != nil {
		srvLog.Warn().Err(err).Msg("Redis unavailable, overview cache disabled")
		overviewCache = cache.NewNoopOverviewCache()
	}

	// Initialize services
	services := &api.Services{
		OverviewService:   service.NewItemOverviewService(itemRepo, purchaseRepo, supplierRepo, overviewCache, cfg.Thresholds),
		ExceptionService:  service.NewExceptionScanService(itemRepo, purchaseRepo, supplierRepo, cfg.Thresholds),
		AllocationService: service.NewAllocationService(itemRepo, allocationRepo),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		srvLog.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvLog.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	srvLog.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		srvLog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	srvLog.Info().Msg("Server exiting")
}
