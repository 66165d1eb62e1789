package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/infrastructure/cache"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/grocerypos/backend/internal/infrastructure/event"
	"github.com/grocerypos/backend/internal/infrastructure/logger"
	"github.com/grocerypos/backend/internal/infrastructure/persistence"
	"github.com/grocerypos/backend/internal/infrastructure/storage"
	"github.com/grocerypos/backend/internal/infrastructure/telemetry"
	"github.com/grocerypos/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting catalog service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("storage", cfg.Storage.Type),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: dbSystem,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Image storage
	imageStore, err := storage.NewImageStore(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// Idempotency store: Redis when enabled, in-memory otherwise
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithKeyPrefix(cfg.Idempotency.KeyPrefix),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Event bus with the product audit log
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewIdempotentHandler(
		catalogapp.NewProductEventLogger(log),
		idempotencyStore,
		log,
		event.WithKeyPrefix("event:product-audit:"),
		event.WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: cfg.Idempotency.TTL}),
	))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	productService := catalogapp.NewProductService(
		persistence.NewGormProductRepository(db.DB),
		catalogapp.WithEventPublisher(eventBus),
		catalogapp.WithServiceLogger(log),
	)
	imageService := catalogapp.NewImageService(imageStore, catalogapp.ImageServiceConfig{
		MaxSize: cfg.Storage.MaxUploadSize,
	}, log)

	engine, err := router.NewEngine(ctx, router.Dependencies{
		Config:           cfg,
		Logger:           log,
		ProductService:   productService,
		ImageService:     imageService,
		ImageStore:       imageStore,
		IdempotencyStore: idempotencyStore,
		DB:               db,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
