package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"webstore/internal/config"
	"webstore/internal/database"
	"webstore/internal/migrations"
	"webstore/internal/observability"
	"webstore/internal/repository"
	"webstore/internal/services"

	"go.uber.org/zap"
)

func main() {
	keep := flag.Bool("keep", false, "migrate and seed without dropping existing tables")
	flag.Parse()

	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()
	logger, err := observability.NewLogger(cfg.ServiceName+"-init-db", cfg.LogLevel, false)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, logger, cfg.DBLogLevel)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if *keep {
		err = migrations.RunMigrations(db, logger)
	} else {
		err = migrations.Reset(db, logger)
	}
	if err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	store := repository.NewStore(db, cfg.TxMaxRetries)
	stock := services.NewStockService(store)
	users := services.NewUserService(store, logger)
	catalog := services.NewCatalogService(store, stock, nil, logger)

	if err := migrations.SeedDefaults(context.Background(), users, catalog, logger); err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	fmt.Println("Database initialization completed successfully!")
	for _, u := range migrations.DefaultUsers {
		fmt.Printf("  %-8s password %-11s role %s\n", u.Username, u.Password, u.Role)
	}
}
