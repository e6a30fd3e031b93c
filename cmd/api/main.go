package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"faithledger/internal/config"
	"faithledger/internal/database"
	"faithledger/internal/logger"
	"faithledger/internal/mailer"
	"faithledger/internal/server"
	"faithledger/internal/services"

	_ "faithledger/internal/docs" // Import swagger docs
)

const shutdownTimeout = 30 * time.Second

// @title           FaithLedger API
// @version         1.0
// @description     JSON endpoints of the FaithLedger church bookkeeping application. Pages are served as HTML; these routes back the transaction form pickers and health checks.

// @host      localhost:8080
// @BasePath  /

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("failed to close database: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	if appConfig.SeedOnStart {
		result, err := services.SeedDefaults(dbManager.DB())
		if err != nil {
			return fmt.Errorf("failed to seed default categories: %w", err)
		}
		log.Infof("Seeded %d categories and %d sub-categories", result.Categories, result.SubCategories)
	}

	router, err := server.NewRouter(appConfig, dbManager.DB(), mailer.New(appConfig))
	if err != nil {
		return err
	}

	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv)
}

// serve runs srv until ctx is cancelled or the listener fails, then shuts
// it down, waiting up to shutdownTimeout for open requests.
func serve(ctx context.Context, srv *http.Server) error {
	log := logger.Get()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting FaithLedger server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("Server stopped gracefully")
		return nil
	})
	return g.Wait()
}
