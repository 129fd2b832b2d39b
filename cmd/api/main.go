package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/cache"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	meterProvider, shutdownMetrics, err := observability.NewMeterProvider(cfg.Metrics)
	if err != nil {
		logger.Fatal("failed to init metrics", zap.Error(err))
	}
	metrics := observability.NewMetrics(meterProvider)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var store repository.Store
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = memory.NewStore()
	}

	var statsCache service.StatsCache
	if redis.Enabled() {
		if c := cache.NewRedisStatsCache(redis.Client, cfg.Stats.CacheTTL()); c != nil {
			statsCache = c
		}
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger)
	stopNotifications := worker.StartNotificationWorker(ctx, notifications, dispatcher, logger, cfg.Notification.QueueSize)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: store.Users(),
		Tokens:   tokens,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		StatsCache: statsCache,
		Logger:     logger,
	})
	statsService := service.NewStatsService(service.StatsDependencies{
		Store:               store,
		Cache:               statsCache,
		Logger:              logger,
		NavigatorUpdatesMax: cfg.Stats.NavigatorUpdatesMax,
	})
	userService := service.NewUserService(store.Users())
	authMiddleware := auth.NewAuthMiddleware(tokens, store.Users())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService, statsService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	stopNotifications()

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := shutdownMetrics(flushCtx); err != nil {
		logger.Warn("metrics shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
