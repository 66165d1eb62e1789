package router

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/grocerypos/backend/internal/application/catalog"
	"github.com/grocerypos/backend/internal/domain/shared"
	"github.com/grocerypos/backend/internal/infrastructure/config"
	"github.com/grocerypos/backend/internal/infrastructure/logger"
	"github.com/grocerypos/backend/internal/infrastructure/storage"
	"github.com/grocerypos/backend/internal/interfaces/http/dto"
	"github.com/grocerypos/backend/internal/interfaces/http/handler"
	"github.com/grocerypos/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// multipart framing on top of the image itself
const uploadOverhead int64 = 1 << 20

// Dependencies are the services the HTTP API is built from
type Dependencies struct {
	Config           *config.Config
	Logger           *zap.Logger
	ProductService   *catalogapp.ProductService
	ImageService     *catalogapp.ImageService
	ImageStore       catalogapp.ImageStore
	IdempotencyStore shared.IdempotencyStore
	DB               handler.Pinger
}

// NewEngine builds the gin engine serving the catalog API. ctx bounds
// background work such as rate limiter eviction
func NewEngine(ctx context.Context, deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}
	engine.MaxMultipartMemory = cfg.Storage.MaxUploadSize

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig(cfg.HTTP)),
	)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID("NOT_FOUND", "Not found", c.GetString(middleware.RequestIDKey)))
	})

	systemHandler := handler.NewSystemHandler(deps.DB)
	engine.GET("/health", systemHandler.Health)

	registerUploads(engine, cfg.Storage, deps.ImageStore, log)

	jsonLimit := middleware.BodyLimit(cfg.HTTP.MaxBodySize)

	productHandler := handler.NewProductHandler(deps.ProductService)
	products := NewDomainGroup("products", "/products").
		GET("", productHandler.List).
		GET("/lookup", productHandler.Lookup).
		GET("/:id", productHandler.Get).
		GET("/:id/barcode.png", productHandler.BarcodeLabel).
		PUT("/:id", jsonLimit, productHandler.Update).
		DELETE("/:id", productHandler.Delete)

	if cfg.Idempotency.Enabled && deps.IdempotencyStore != nil {
		products.POST("", jsonLimit, middleware.Idempotency(deps.IdempotencyStore, cfg.Idempotency.TTL, log), productHandler.Create)
	} else {
		products.POST("", jsonLimit, productHandler.Create)
	}

	uploadHandler := handler.NewUploadHandler(deps.ImageService)
	uploads := NewDomainGroup("upload", "/upload").
		POST("", middleware.BodyLimit(cfg.Storage.MaxUploadSize+uploadOverhead), uploadHandler.Upload)

	NewRouter(engine).
		Register(products).
		Register(uploads).
		Setup()

	return engine, nil
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

// registerUploads serves product images. Local files are served from disk;
// remote stores redirect to a short-lived download URL
func registerUploads(engine *gin.Engine, cfg config.StorageConfig, store catalogapp.ImageStore, log *zap.Logger) {
	prefix := "/" + strings.Trim(cfg.PublicPrefix, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}

	linker, ok := store.(storage.Linker)
	if !ok {
		engine.Static(prefix, cfg.LocalDir)
		return
	}

	engine.GET(prefix+"/*name", func(c *gin.Context) {
		name := path.Base(c.Param("name"))
		if name == "/" || name == "." {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "Not found"))
			return
		}
		url, err := linker.DownloadURL(c.Request.Context(), name)
		if err != nil {
			log.Warn("failed to sign image url", zap.String("name", name), zap.Error(err))
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "Not found"))
			return
		}
		c.Redirect(http.StatusFound, url)
	})
}
