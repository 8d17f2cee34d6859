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
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/waste-collection-api/api/swagger"
	"github.com/noah-isme/waste-collection-api/internal/handler"
	internalmiddleware "github.com/noah-isme/waste-collection-api/internal/middleware"
	"github.com/noah-isme/waste-collection-api/internal/repository"
	"github.com/noah-isme/waste-collection-api/internal/service"
	"github.com/noah-isme/waste-collection-api/pkg/cache"
	"github.com/noah-isme/waste-collection-api/pkg/config"
	"github.com/noah-isme/waste-collection-api/pkg/database"
	"github.com/noah-isme/waste-collection-api/pkg/jobs"
	"github.com/noah-isme/waste-collection-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/waste-collection-api/pkg/middleware/cors"
	"github.com/noah-isme/waste-collection-api/pkg/middleware/idempotency"
	reqidmiddleware "github.com/noah-isme/waste-collection-api/pkg/middleware/requestid"
)

// @title Waste Collection API
// @version 1.0.0
// @description Pickup request lifecycle: acceptance, driver assignment, collection, payment and feedback
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	nrApp := newRelicApp(cfg, logr)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(context.Background(), db)
		if err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
		logr.Info("migrations applied", zap.Ints("versions", applied))
	}

	redisClient, err := cache.NewRedis(cfg.Redis, nrApp)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	requestRepo := repository.NewWasteRequestRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	districtRepo := repository.NewDistrictRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	stats := service.NewStatsService(requestRepo, cacheSvc, cfg.Stats.CacheTTL, logr)

	queue := jobs.NewQueue("notifications", jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: 256,
		MaxRetries: cfg.Notifications.Retries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})
	mailer := service.LogMailer{From: cfg.Notifications.FromAddress, Logger: logr}
	notifications := service.NewNotificationService(queue, mailer, userRepo, driverRepo, metrics, logr)
	queue.Register(service.NotificationJobType, notifications.HandleJob)

	lifecycle := []service.LifecycleOption{
		service.WithMetrics(metrics),
		service.WithStatsInvalidation(stats),
	}
	if cfg.Notifications.Enabled {
		lifecycle = append(lifecycle, service.WithNotifier(notifications))
	}

	resolver := service.NewPaymentResolver(requestRepo, categoryRepo, service.PaymentConfig{
		DueAfter:      cfg.Payments.DueAfter,
		DefaultMethod: cfg.Payments.DefaultMethod,
	}, validate, logr, lifecycle...)

	requestsSvc := service.NewWasteRequestService(requestRepo, service.RequestReferences{
		Categories: categoryRepo,
		Districts:  districtRepo,
		Drivers:    driverRepo,
		Users:      userRepo,
		Payments:   paymentRepo,
	}, service.NewPricingCalculator(cfg.Requests.PricingMinorUnits), resolver, service.WasteRequestConfig{
		MinPickupLeadDays: cfg.Requests.MinPickupLeadDays,
	}, validate, logr, lifecycle...)

	var assignments *service.AssignmentService
	guard := service.NewCapacityGuard(cfg.Assignment.DriverPendingCapacity)
	if cfg.Assignment.LockEnabled {
		assignments = service.NewAssignmentService(requestRepo, driverRepo, repository.NewLockRepository(redisClient), guard, cfg.Assignment.LockTTL, logr, lifecycle...)
	} else {
		assignments = service.NewAssignmentService(requestRepo, driverRepo, nil, guard, cfg.Assignment.LockTTL, logr, lifecycle...)
	}

	feedback := service.NewFeedbackService(requestRepo, validate, logr, lifecycle...)
	reports := service.NewReportService(requestsSvc, requestRepo, categoryRepo, logr)
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	r := gin.New()
	r.Use(gin.Recovery())
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var secured []gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		secured = append(secured, idempotency.Middleware(idempotency.NewRedisStore(redisClient), cfg.Idempotency.TTL, func(c *gin.Context) string {
			return c.GetString(logger.ActorKey)
		}, logr))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Requests:   handler.NewWasteRequestHandler(requestsSvc, assignments, resolver, feedback, reports),
		Stats:      handler.NewStatsHandler(stats),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(categoryRepo, validate, logr)),
		Districts:  handler.NewDistrictHandler(service.NewDistrictService(districtRepo, validate, logr)),
		Drivers:    handler.NewDriverHandler(service.NewDriverService(driverRepo, districtRepo, requestRepo, validate, logr)),
	}, internalmiddleware.JWT(tokens), secured...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	queue.Stop()
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
}

func newRelicApp(cfg *config.Config, logr *zap.Logger) *newrelic.Application {
	if !cfg.NewRelic.Enabled {
		return nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.NewRelic.AppName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		logr.Warn("new relic disabled", zap.Error(err))
		return nil
	}
	return app
}
