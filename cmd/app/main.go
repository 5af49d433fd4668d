package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bu1gur/challenger-crm/internal/cache"
	"github.com/Bu1gur/challenger-crm/internal/config"
	"github.com/Bu1gur/challenger-crm/internal/db"
	"github.com/Bu1gur/challenger-crm/internal/logger"
	"github.com/Bu1gur/challenger-crm/internal/server"
)

// @title Challenger CRM API
// @version 1.0
// @description Client subscriptions, freezes, visits and renewals for the Challenger club.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting Challenger CRM")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	var store cache.Cache = cache.Nop{}
	if rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword); err != nil {
		logger.Warn("Redis unavailable, reference data will not be cached", "addr", cfg.RedisAddr, "error", err)
	} else {
		defer rdb.Close()
		store = cache.NewRedisCache(rdb, cfg.CatalogTTL)
		logger.Info("Redis connected", "addr", cfg.RedisAddr)
	}

	srv := server.New(database, store, cfg)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		if err != nil {
			logger.Errorf("Server error: %v", err)
		}
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
