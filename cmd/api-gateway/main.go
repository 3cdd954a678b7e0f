package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pulse-api/api/swagger"
	"github.com/noah-isme/pulse-api/internal/handler"
	"github.com/noah-isme/pulse-api/internal/insights"
	internalmiddleware "github.com/noah-isme/pulse-api/internal/middleware"
	"github.com/noah-isme/pulse-api/internal/models"
	"github.com/noah-isme/pulse-api/internal/repository"
	"github.com/noah-isme/pulse-api/internal/service"
	"github.com/noah-isme/pulse-api/pkg/cache"
	"github.com/noah-isme/pulse-api/pkg/config"
	"github.com/noah-isme/pulse-api/pkg/database"
	"github.com/noah-isme/pulse-api/pkg/jobs"
	"github.com/noah-isme/pulse-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pulse-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pulse-api/pkg/middleware/requestid"
)

// @title Pulse API
// @version 1.0.0
// @description Publisher analytics: KPIs, page rankings, drill-downs and recommended actions.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

// factBackend reads and replaces facts for one site.
type factBackend interface {
	insights.FactStore
	ReplaceFacts(ctx context.Context, batch models.FactBatch) error
}

type factPurger interface {
	DeleteSiteFacts(ctx context.Context, siteID string) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	facts, purger := openFactStore(cfg, db, logr)

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	locker := cache.NewLocker(nil, "")
	if cfg.Sync.LockEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer client.Close()
		locker = cache.NewLocker(client, "pulse:lock")
	}

	var channelSource insights.Float64Source
	if cfg.Insights.ChannelSplitSeed != 0 {
		channelSource = insights.NewLockedSource(cfg.Insights.ChannelSplitSeed)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	syncJobRepo := repository.NewSyncJobRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	siteSvc := service.NewSiteService(siteRepo, purger, validate, logr)
	connectionSvc := service.NewConnectionService(connectionRepo, siteRepo, validate, logr)
	insightsSvc := service.NewInsightsService(facts, siteRepo, syncJobRepo, channelSource, metricsSvc, logr)
	syncSvc := service.NewSyncService(syncJobRepo, siteRepo, facts, locker, cfg.Sync.LockTTL, metricsSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncQueue := jobs.NewQueue(service.JobTypeSyncDummy, syncSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Sync.Workers,
		MaxRetries: cfg.Sync.Retries,
		DeadLetter: syncSvc.HandleDeadLetter,
		Logger:     logr,
	})
	syncSvc.AttachQueue(syncQueue)
	syncQueue.Start(ctx)
	defer syncQueue.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	siteHandler := handler.NewSiteHandler(siteSvc)
	connectionHandler := handler.NewConnectionHandler(connectionSvc)
	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	devHandler := handler.NewDevHandler(syncSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, cfg.Database.Driver)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
	}
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	api := r.Group(cfg.APIPrefix)

	health := api.Group("/health")
	health.GET("", metricsHandler.Health)
	health.GET("/db", metricsHandler.Database)
	health.GET("/metrics", metricsHandler.Snapshot)

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.GET("/auth/me", authHandler.Me)

	sites := secured.Group("/sites")
	sites.POST("", siteHandler.Create)
	sites.GET("", siteHandler.List)
	sites.GET("/:id", siteHandler.Get)
	sites.DELETE("/:id", siteHandler.Delete)

	connections := secured.Group("/connections")
	connections.GET("/ga4/properties", connectionHandler.GA4Properties)
	connections.GET("/adsense/accounts", connectionHandler.AdSenseAccounts)
	connections.POST("", connectionHandler.Create)
	connections.GET("", connectionHandler.List)
	connections.DELETE("/:id", connectionHandler.Delete)

	secured.GET("/home/kpis", insightsHandler.HomeKPIs)
	secured.GET("/pages/top", insightsHandler.TopPages)
	secured.GET("/pages/top/export", insightsHandler.ExportTopPages)
	secured.GET("/pages/detail", insightsHandler.PageDetail)
	secured.GET("/actions", insightsHandler.Actions)

	dev := secured.Group("/dev")
	dev.Use(internalmiddleware.DevOnly(cfg.DevEndpointsEnabled()))
	dev.POST("/sync-dummy", devHandler.SyncDummy)
	dev.GET("/sync-jobs/:id", devHandler.SyncJob)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting",
			"addr", srv.Addr,
			"env", cfg.Env,
			"fact_store", cfg.Insights.FactStore,
			"dev_endpoints", cfg.DevEndpointsEnabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openFactStore picks the fact backend. The ClickHouse store also purges facts when a site is deleted.
func openFactStore(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) (factBackend, factPurger) {
	switch cfg.Insights.FactStore {
	case "", config.FactStoreSQL:
		return repository.NewFactRepository(db), nil
	case config.FactStoreClickHouse:
		conn, err := database.NewClickHouse(cfg.ClickHouse)
		if err != nil {
			logr.Fatal("failed to connect clickhouse", zap.String("addr", cfg.ClickHouse.Addr), zap.Error(err))
		}
		store := repository.NewClickHouseFactRepository(conn)
		return store, store
	default:
		logr.Fatal("unsupported fact store", zap.String("fact_store", cfg.Insights.FactStore))
		return nil, nil
	}
}
