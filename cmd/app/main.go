package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/am-muhwezi/ptf-sub000/docs"

	"github.com/am-muhwezi/ptf-sub000/internal/cache"
	"github.com/am-muhwezi/ptf-sub000/internal/catalog"
	"github.com/am-muhwezi/ptf-sub000/internal/config"
	"github.com/am-muhwezi/ptf-sub000/internal/db"
	"github.com/am-muhwezi/ptf-sub000/internal/logger"
	"github.com/am-muhwezi/ptf-sub000/internal/server"
)

// @title Paul's Tropical Fitness API
// @version 1.0
// @description Membership and attendance engine for Paul's Tropical Fitness.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting membership engine")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catalog.NewRepository(database).Seed(seedCtx); err != nil {
		seedCancel()
		logger.Fatalf("Failed to seed plan catalog: %v", err)
	}
	seedCancel()
	logger.Info("Plan catalog seeded")

	store := cache.NewRedis(cfg.RedisAddr)
	defer store.Close()
	logger.Info("Cache connected", "addr", cfg.RedisAddr)

	srv := server.New(database, cfg, store)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
