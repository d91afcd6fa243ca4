package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jualbuku/bookmart-backend/internal/cart"
	"github.com/jualbuku/bookmart-backend/internal/catalog"
	"github.com/jualbuku/bookmart-backend/internal/cron"
	"github.com/jualbuku/bookmart-backend/internal/notifications"
	"github.com/jualbuku/bookmart-backend/internal/orders"
	"github.com/jualbuku/bookmart-backend/internal/sellers"
	"github.com/jualbuku/bookmart-backend/internal/settings"
	"github.com/jualbuku/bookmart-backend/pkg/config"
	"github.com/jualbuku/bookmart-backend/pkg/db"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	"github.com/jualbuku/bookmart-backend/pkg/metrics"
	"github.com/jualbuku/bookmart-backend/pkg/migrate"
	"github.com/jualbuku/bookmart-backend/pkg/redis"
)

const lockKeyFormat = "bm:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	ordersRepo := orders.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	notificationsService, err := notifications.NewService(notificationsRepo, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settings.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	// The sweep reuses the order engine so expirations restock inventory
	// and notify customers exactly like an admin cancellation.
	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		cart.NewRepository(gormDB),
		catalog.NewRepository(gormDB),
		sellers.NewRepository(gormDB),
		settingsService,
		notificationsService,
		orders.NewNumberGenerator(),
		metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		cfg.Checkout.OrderNumberMaxRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	orderTTLJob, err := cron.NewOrderTTLJob(cron.OrderTTLJobParams{
		Logger:            logg,
		UnpaidReader:      ordersRepo,
		Canceller:         ordersService,
		CancelUnpaidAfter: cfg.Cron.CancelUnpaidAfter,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order ttl job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationsRepo,
		Retention:  cfg.Cron.NotificationRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(orderTTLJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
