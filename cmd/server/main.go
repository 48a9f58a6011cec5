package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	catalogapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/catalog"
	marketapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/market"
	partnerapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/partner"
	pricingapp "github.com/JBeggs/fambrifarms-backend-sub002/internal/application/pricing"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/domain/pricing"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/auth"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/cache"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/config"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/logger"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/persistence"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/infrastructure/telemetry"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/interfaces/http/handler"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/interfaces/http/middleware"
	"github.com/JBeggs/fambrifarms-backend-sub002/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting Fambri Farms pricing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Initialize OpenTelemetry tracing
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	// Connect to the database with the zap-backed GORM logger
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled,
		DBName:  cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Latest-price cache: Redis when configured, in-process otherwise
	var latestPriceCache marketapp.LatestPriceCache
	if cfg.Redis.Host != "" {
		redisCache, err := cache.NewRedisLatestPriceCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Market.CacheTTL, log)
		if err != nil {
			log.Warn("Redis unavailable, falling back to in-memory latest-price cache", zap.Error(err))
			latestPriceCache = cache.NewInMemoryLatestPriceCache(
				cache.WithInMemoryTTL(cfg.Market.CacheTTL),
				cache.WithInMemoryLogger(log))
		} else {
			defer redisCache.Close()
			latestPriceCache = redisCache
		}
	} else {
		latestPriceCache = cache.NewInMemoryLatestPriceCache(
			cache.WithInMemoryTTL(cfg.Market.CacheTTL),
			cache.WithInMemoryLogger(log))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	marketPriceRepo := persistence.NewGormMarketPriceRepository(db.DB)
	pricingRuleRepo := persistence.NewGormPricingRuleRepository(db.DB)
	priceListRepo := persistence.NewGormPriceListRepository(db.DB)

	// Domain services
	generator := pricing.NewPriceListGenerator(
		pricingapp.NewRepositoryMarketData(marketPriceRepo),
		pricingapp.NewHistoryVolatilityRater(marketPriceRepo,
			cfg.Market.VolatilityWindowDays, cfg.Market.VolatilityCVThreshold),
		pricingapp.NewListPriceHistory(priceListRepo),
		pricing.GeneratorConfig{
			ValidityDays:         cfg.Pricing.PriceListValidityDays,
			MarketDataSourceName: cfg.Pricing.MarketDataSourceName,
		},
	)

	// Application services
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	customerService := partnerapp.NewCustomerService(customerRepo)
	supplierService := partnerapp.NewSupplierService(supplierRepo)
	marketService := marketapp.NewService(marketPriceRepo, productRepo, supplierRepo,
		latestPriceCache, marketapp.ServiceConfig{
			VolatilityWindowDays:  cfg.Market.VolatilityWindowDays,
			VolatilityCVThreshold: cfg.Market.VolatilityCVThreshold,
		})
	ruleService := pricingapp.NewRuleService(pricingRuleRepo)
	priceListService := pricingapp.NewPriceListService(
		customerRepo, productRepo, categoryRepo, priceListRepo,
		ruleService, generator, log, pricingapp.ServiceConfig{
			SignificantChangeThresholdPercent: decimal.NewFromFloat(cfg.Pricing.SignificantChangeThresholdPercent),
			GenerationWorkers:                 cfg.Pricing.GenerationWorkers,
		})

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)

	// Handlers
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	customerHandler := handler.NewCustomerHandler(customerService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	marketPriceHandler := handler.NewMarketPriceHandler(marketService)
	pricingRuleHandler := handler.NewPricingRuleHandler(ruleService)
	priceListHandler := handler.NewPriceListHandler(priceListService)
	systemHandler := handler.NewSystemHandler()

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}

	// Health check outside API versioning so probes bypass auth
	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Route groups
	pricingGroup := router.NewDomainGroup("pricing", "/pricing").
		POST("/rules", pricingRuleHandler.Create).
		GET("/rules", pricingRuleHandler.List).
		GET("/rules/resolve", pricingRuleHandler.Resolve).
		GET("/rules/:id", pricingRuleHandler.GetByID).
		PATCH("/rules/:id/adjustments", pricingRuleHandler.UpdateAdjustments).
		PATCH("/rules/:id/effective-until", pricingRuleHandler.SetEffectiveUntil).
		POST("/rules/:id/deactivate", pricingRuleHandler.Deactivate).
		POST("/lists", priceListHandler.Generate).
		POST("/lists/batch", priceListHandler.BatchGenerate).
		GET("/lists/:id", priceListHandler.GetByID).
		POST("/lists/:id/activate", priceListHandler.Activate).
		POST("/lists/:id/send", priceListHandler.MarkSent).
		POST("/lists/:id/acknowledge", priceListHandler.Acknowledge).
		DELETE("/lists/:id", priceListHandler.Delete)

	marketGroup := router.NewDomainGroup("market", "/market").
		POST("/prices", marketPriceHandler.Record).
		POST("/prices/import", marketPriceHandler.Import).
		GET("/prices/:product_id/latest", marketPriceHandler.Latest).
		GET("/prices/:product_id/history", marketPriceHandler.History).
		GET("/prices/:product_id/volatility", marketPriceHandler.Volatility)

	catalogGroup := router.NewDomainGroup("catalog", "/catalog").
		POST("/products", productHandler.Create).
		GET("/products", productHandler.List).
		GET("/products/code/:code", productHandler.GetByCode).
		GET("/products/:id", productHandler.GetByID).
		PUT("/products/:id", productHandler.Update).
		POST("/products/:id/activate", productHandler.Activate).
		POST("/products/:id/deactivate", productHandler.Deactivate).
		POST("/products/:id/discontinue", productHandler.Discontinue).
		POST("/categories", categoryHandler.Create).
		GET("/categories", categoryHandler.List).
		GET("/categories/:id", categoryHandler.GetByID).
		PUT("/categories/:id", categoryHandler.Update).
		DELETE("/categories/:id", categoryHandler.Delete)

	partnerGroup := router.NewDomainGroup("partner", "/partner").
		POST("/customers", customerHandler.Create).
		GET("/customers", customerHandler.List).
		GET("/customers/:id", customerHandler.GetByID).
		PUT("/customers/:id", customerHandler.Update).
		PATCH("/customers/:id/segment", customerHandler.ChangeSegment).
		POST("/customers/:id/activate", customerHandler.Activate).
		POST("/customers/:id/deactivate", customerHandler.Deactivate).
		GET("/customers/:id/price-lists", priceListHandler.ListByCustomer).
		POST("/suppliers", supplierHandler.Create).
		GET("/suppliers", supplierHandler.List).
		GET("/suppliers/:id", supplierHandler.GetByID).
		PUT("/suppliers/:id/contact", supplierHandler.UpdateContact)

	systemGroup := router.NewDomainGroup("system", "/system").
		GET("/ping", systemHandler.Ping).
		GET("/info", systemHandler.GetSystemInfo)

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig)).
		Register(pricingGroup).
		Register(marketGroup).
		Register(catalogGroup).
		Register(partnerGroup).
		Register(systemGroup).
		Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server stopped")
}
