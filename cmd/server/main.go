package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	accountapp "github.com/mitra/backend/internal/application/account"
	catalogapp "github.com/mitra/backend/internal/application/catalog"
	syncapp "github.com/mitra/backend/internal/application/partnersync"
	revenueapp "github.com/mitra/backend/internal/application/revenue"
	"github.com/mitra/backend/internal/infrastructure/auth"
	"github.com/mitra/backend/internal/infrastructure/config"
	"github.com/mitra/backend/internal/infrastructure/logger"
	"github.com/mitra/backend/internal/infrastructure/partnerapi"
	"github.com/mitra/backend/internal/infrastructure/persistence"
	"github.com/mitra/backend/internal/interfaces/http/handler"
	"github.com/mitra/backend/internal/interfaces/http/middleware"
	"github.com/mitra/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Mitra Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	tierRepo := persistence.NewGormPackageTierRepository(db.DB)
	picRepo := persistence.NewGormPICRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	machineRepo := persistence.NewGormMachineRepository(db.DB)
	revenueRepo := persistence.NewGormRevenueRuleRepository(db.DB)

	// Partner synchronization pipeline
	tokenCache := partnerapi.NewTokenCache(partnerapi.Credentials{
		TokenURL:     cfg.Partner.TokenURL,
		ClientID:     cfg.Partner.ClientID,
		ClientSecret: cfg.Partner.ClientSecret,
		Scope:        cfg.Partner.Scope,
	})
	proxyClient := partnerapi.NewProxyClient(cfg.Partner.RequestTimeout, tokenCache, log)
	configClient := partnerapi.NewConfigClient(cfg.Partner.ConfigStoreURL, redisClient, cfg.Partner.ConfigCacheTTL, log)
	reconciler := syncapp.NewIDReconciler(accountRepo, tierRepo, picRepo, log)
	dispatcher := syncapp.NewDispatcher(
		syncapp.NewTransformer(),
		proxyClient,
		configClient,
		tokenCache,
		reconciler,
		cfg.Partner.MaxAttempts,
		log,
	)

	// Application services
	accountService := accountapp.NewService(accountRepo, tierRepo, picRepo)
	vendorService := catalogapp.NewVendorService(vendorRepo)
	machineService := catalogapp.NewMachineService(machineRepo, vendorRepo, accountRepo)
	revenueService := revenueapp.NewService(revenueRepo, accountRepo)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountService)
	syncHandler := handler.NewSyncHandler(accountRepo, dispatcher)
	vendorHandler := handler.NewVendorHandler(vendorService)
	machineHandler := handler.NewMachineHandler(machineService)
	revenueHandler := handler.NewRevenueRuleHandler(revenueService)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.JWTAuthMiddleware(jwtService))

	engine.GET("/health", healthHandler(db))
	engine.GET("/api/v1/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(&router.AccountRoutes{
		Accounts: accountHandler,
		Sync:     syncHandler,
		Machines: machineHandler,
		Revenue:  revenueHandler,
	})
	r.Register(&router.CatalogRoutes{
		Vendors:  vendorHandler,
		Machines: machineHandler,
	})
	r.Register(&router.RevenueRoutes{
		Rules: revenueHandler,
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
