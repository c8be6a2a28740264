// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/your-org/production-backend/internal/config"
	"github.com/your-org/production-backend/internal/domain/catalog"
	"github.com/your-org/production-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/production-backend/internal/infrastructure/database/redis"
	"github.com/your-org/production-backend/internal/interfaces/http"
	"github.com/your-org/production-backend/internal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.New(cfg)
	logg.WithField("environment", cfg.App.Environment).Infof("Starting %s v%s", cfg.App.Name, cfg.App.Version)

	// Connect to database
	db, err := postgres.NewConnection(cfg, logg)
	if err != nil {
		logg.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		logg.WithError(err).Fatal("Database health check failed")
	}

	// Redis is optional; without it the catalog cache and rate limiter are off
	var (
		redisClient *goredis.Client
		cache       catalog.Cache
	)
	if cfg.Redis.Enabled {
		rc, err := redis.NewConnection(cfg, logg)
		if err != nil {
			logg.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer rc.Close()
		redisClient = rc.GetClient()
		cache = rc
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), cfg, logg)

	if err := migration.RunAutoMigrations(); err != nil {
		logg.WithError(err).Fatal("Database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		logg.WithError(err).Warn("Index creation failed")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			logg.WithError(err).Warn("Data seeding failed")
		}
		if err := migration.GetTableInfo(); err != nil {
			logg.WithError(err).Warn("Could not list tables")
		}
	}

	server := http.NewServer(cfg, logg, db.GetDB(), redisClient, cache)

	go func() {
		if err := server.Start(); err != nil {
			logg.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logg.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logg.Info("Server shutdown completed")
}
