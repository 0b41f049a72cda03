package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fieldservice/internal/app"
	"fieldservice/internal/config"
	"fieldservice/internal/handler"
	internalRedis "fieldservice/internal/redis"
	"fieldservice/internal/repository/postgres"
	"fieldservice/internal/service"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := config.Load()

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Error("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	server, shutdown, err := wireServer(ctx, db, redisClient, nrApp, cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire server", zap.Error(err))
	}
	defer shutdown()

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server along with
// a cleanup func that stops running simulations and closes the cache store.
func wireServer(
	ctx context.Context,
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *zap.Logger,
) (*http.Server, func(), error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, err
	}

	// Stores.
	documentStore := postgres.NewDocumentStore(db)
	locationStore := internalRedis.NewLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	kvStore, closeKV, err := app.NewKeyValueStore(ctx, cfg.Cache, redisClient)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("job cache backend ready",
		zap.String("backend", cfg.Cache.Backend),
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Bool("single_flight", cfg.Cache.SingleFlight),
	)

	cacheOpts := []service.JobCacheOption{service.WithCacheTTL(cfg.Cache.TTL)}
	if cfg.Cache.SingleFlight {
		cacheOpts = append(cacheOpts, service.WithSingleFlight())
	}
	jobCache := service.NewJobCache(documentStore, kvStore, logger, cacheOpts...)

	// Services.
	notificationService := service.NewNotificationService(logger)
	jobService := service.NewJobService(documentStore, jobCache, notificationService, logger)
	jobService.SetTransactor(postgres.NewTransactor(db))
	attendanceService := service.NewAttendanceService(documentStore, lockStore, notificationService, loc, logger)
	provider := app.NewDirectionsProvider(cfg.Directions, nrApp, logger)
	navigationService := service.NewNavigationService(
		app.NavigationConfig(cfg.Navigation, cfg.Directions),
		provider,
		locationStore,
		notificationService,
		logger,
	)

	router := app.NewRouter(app.RouterDeps{
		JobHandler:        handler.NewJobHandler(jobService),
		WorkerHandler:     handler.NewWorkerHandler(attendanceService, navigationService),
		NavigationHandler: handler.NewNavigationHandler(navigationService),
		RedisClient:       redisClient,
		NewRelicApp:       nrApp,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdown := func() {
		navigationService.Shutdown()
		if err := closeKV(); err != nil {
			logger.Warn("failed to close cache store", zap.Error(err))
		}
	}
	return server, shutdown, nil
}
