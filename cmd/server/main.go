package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webstore/internal/config"
	"webstore/internal/database"
	"webstore/internal/handlers"
	"webstore/internal/messaging"
	"webstore/internal/migrations"
	"webstore/internal/observability"
	"webstore/internal/redis"
	"webstore/internal/repository"
	"webstore/internal/repository/memory"
	"webstore/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	location, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	telemetry, err := observability.Setup(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to set up telemetry: ", err)
	}
	logger, err := observability.NewLogger(cfg.ServiceName, cfg.LogLevel, cfg.OtelEndpoint != "")
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	// Money is served as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
	gin.SetMode(cfg.GinMode)

	store, closeStore := openStore(cfg, logger)
	defer closeStore()

	var cache services.ReportCache
	if cfg.RedisURL != "" {
		redisClient, err := redis.Initialize(cfg.RedisURL, cfg.CacheDuration())
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		cache = redisClient
		logger.Info("report cache enabled", zap.Duration("ttl", cfg.CacheDuration()))
	}

	var events services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic, cfg.ServiceName, otel.GetTracerProvider(), logger)
		if err != nil {
			logger.Fatal("failed to create kafka publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
		logger.Info("order events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaOrderTopic))
	}

	// Initialize services
	stock := services.NewStockService(store)
	svc := handlers.Services{
		Catalog: services.NewCatalogService(store, stock, cache, logger),
		Stock:   stock,
		Orders:  services.NewOrderService(store, cache, events, logger),
		Reports: services.NewReportService(store, cache, location, logger),
		Users:   services.NewUserService(store, logger),
	}

	if cfg.StoreDriver == config.StoreMemory {
		if err := migrations.SeedDefaults(ctx, svc.Users, svc.Catalog, logger); err != nil {
			logger.Fatal("failed to seed in-memory store", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (repository.Store, func()) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() {}
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, logger, cfg.DBLogLevel)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to access database handle", zap.Error(err))
	}
	return repository.NewStore(db, cfg.TxMaxRetries), func() { sqlDB.Close() }
}
