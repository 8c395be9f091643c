package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authapp "github.com/orderlink/backend/internal/application/auth"
	catalogapp "github.com/orderlink/backend/internal/application/catalog"
	ordersapp "github.com/orderlink/backend/internal/application/orders"
	privacyapp "github.com/orderlink/backend/internal/application/privacy"
	"github.com/orderlink/backend/internal/infrastructure/auth"
	"github.com/orderlink/backend/internal/infrastructure/cache"
	"github.com/orderlink/backend/internal/infrastructure/config"
	"github.com/orderlink/backend/internal/infrastructure/logger"
	"github.com/orderlink/backend/internal/infrastructure/marketplace"
	"github.com/orderlink/backend/internal/infrastructure/persistence"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
	"github.com/orderlink/backend/internal/infrastructure/storefront"
	"github.com/orderlink/backend/internal/interfaces/http/handler"
	"github.com/orderlink/backend/internal/interfaces/http/middleware"
	"github.com/orderlink/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting OrderLink Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	merchantRepo := persistence.NewGormMerchantRepository(db.DB)
	requestRepo := persistence.NewGormCustomerRequestRepository(db.DB)

	// Webhook delivery dedupe: redis when configured, in-process otherwise
	var dedupe cache.DeliveryDedupe
	if cfg.Redis.Enabled {
		redisDedupe, err := cache.NewRedisDeliveryDedupe(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		dedupe = redisDedupe
		log.Info("Redis delivery dedupe enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		dedupe = cache.NewInMemoryDeliveryDedupe()
	}
	defer func() {
		if err := dedupe.Close(); err != nil {
			log.Error("Error closing dedupe store", zap.Error(err))
		}
	}()

	// Platform clients
	storefrontClient := storefront.NewClient(cfg.Storefront, log)
	marketplaceClient := marketplace.NewClient(log)

	// Deferred completion: the scheduler fires jobs into the completion
	// service, which reloads all state at fire time
	completionService := ordersapp.NewCompletionService(merchantRepo, storefrontClient, log)
	jobScheduler := scheduler.NewDeferredScheduler(completionService, log)
	if err := jobScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		if err := jobScheduler.Stop(context.Background()); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	// Application services
	webhookService := ordersapp.NewWebhookService(ordersapp.WebhookServiceConfig{
		MerchantRepo:    merchantRepo,
		Dedupe:          dedupe,
		DraftClient:     storefrontClient,
		Scheduler:       jobScheduler,
		CompletionDelay: cfg.Webhook.CompletionDelay,
		DedupeTTL:       cfg.Webhook.DedupeTTL,
		Logger:          log,
	})
	reconcileService := ordersapp.NewReconcileService(merchantRepo, jobScheduler, cfg.Webhook.ReconcileDelay, log)
	sourceService := catalogapp.NewSourceService(catalogapp.SourceServiceConfig{
		MerchantRepo: merchantRepo,
		Marketplace:  marketplaceClient,
		NewSecret:    marketplace.NewWebhookSecret,
		PublicURL:    cfg.App.PublicURL,
		Logger:       log,
	})
	catalogService := catalogapp.NewCatalogService(catalogapp.CatalogServiceConfig{
		MerchantRepo: merchantRepo,
		Logger:       log,
	})
	privacyService := privacyapp.NewService(privacyapp.ServiceConfig{
		MerchantRepo: merchantRepo,
		RequestRepo:  requestRepo,
		Logger:       log,
	})
	sessionService := auth.NewSessionService(cfg.Session)
	authService := authapp.NewService(merchantRepo, sessionService, log)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(cfg.HTTP.CORSOrigins))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAPIMiddleware(middleware.SessionAuth(sessionService)),
	)

	// Webhook surfaces sit at the root, authenticated by HMAC; the operator
	// API sits behind the session middleware
	r.RegisterRoot(handler.NewSystemHandler(db, jobScheduler))
	r.RegisterRoot(handler.NewWebhookHandler(webhookService, log))
	r.RegisterRoot(handler.NewStorefrontWebhookHandler(privacyService, cfg.Storefront.WebhookSecret, log))
	r.RegisterRoot(handler.NewAuthHandler(authService, log))
	r.RegisterAPI(handler.NewSourceHandler(sourceService, log))
	r.RegisterAPI(handler.NewCatalogHandler(catalogService, reconcileService, log))
	r.RegisterAPI(handler.NewPrivacyHandler(privacyService, log))
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

	// Graceful shutdown
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
