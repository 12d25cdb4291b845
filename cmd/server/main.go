package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camwillm/Cenarium/internal/config"
	"github.com/camwillm/Cenarium/internal/handlers"
	"github.com/camwillm/Cenarium/internal/repository"
	"github.com/camwillm/Cenarium/internal/server"
	"github.com/camwillm/Cenarium/internal/service"
	"github.com/camwillm/Cenarium/internal/watcher"
	"github.com/camwillm/Cenarium/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting catalog api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"data_file", cfg.Catalog.DataFile,
		"cache_enabled", cfg.Catalog.CacheEnabled,
		"strict_validation", cfg.Catalog.StrictValidation,
		"log_level", cfg.LogLevel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repositories
	fileRepo := repository.NewFileCatalogRepository(cfg.Catalog.DataFile)
	var catalogRepo repository.CatalogRepository = fileRepo

	if cfg.Catalog.CacheEnabled {
		cached := repository.NewCachedCatalogRepository(fileRepo, log)
		catalogRepo = cached

		// The stat check alone keeps the cache correct; the watcher only makes
		// invalidation immediate.
		fw, err := watcher.NewFileWatcher(cfg.Catalog.DataFile, log)
		if err != nil {
			log.Warn("data file watcher disabled", "error", err)
		} else {
			defer fw.Stop()
			go cached.InvalidateOn(ctx, fw.Watch(ctx))
		}
	}

	if _, err := catalogRepo.Load(ctx); err != nil {
		log.Warn("catalog data not loadable at startup, serving errors until fixed", "error", err)
	}

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo, log,
		service.WithStrictValidation(cfg.Catalog.StrictValidation),
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(catalogService, log)
	catalogHandler := handlers.NewCatalogHandler(catalogService, log)

	// Create router
	r := server.NewRouter(cfg.CORS, catalogHandler, healthHandler, log)

	// Create HTTP server
	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
