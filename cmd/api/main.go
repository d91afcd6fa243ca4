package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jualbuku/bookmart-backend/api/routes"
	"github.com/jualbuku/bookmart-backend/internal/cart"
	"github.com/jualbuku/bookmart-backend/internal/catalog"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	// Redis is a soft dependency for the api: without it the checkout
	// idempotency guard and live notification push are disabled, but
	// orders and durable notifications keep working.
	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Warn(context.Background(), "redis unavailable; idempotency guard and live push disabled")
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	gormDB := dbClient.DB()
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	sellersRepo := sellers.NewRepository(gormDB)
	settingsRepo := settings.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	var notificationsService notifications.Service
	if redisClient != nil {
		notificationsService, err = notifications.NewService(notificationsRepo, redisClient, logg)
	} else {
		notificationsService, err = notifications.NewService(notificationsRepo, nil, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	settingsService, err := settings.NewService(settingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	sellersService, err := sellers.NewService(sellersRepo, dbClient, notificationsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create sellers service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, sellersRepo, notificationsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	ordersService, err := orders.NewService(
		ordersRepo,
		dbClient,
		cartRepo,
		catalogRepo,
		sellersRepo,
		settingsService,
		notificationsService,
		orders.NewNumberGenerator(),
		orderMetrics,
		cfg.Checkout.OrderNumberMaxRetries,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	var cache redis.Pinger
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		cache = redisClient
		idemStore = redisClient
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, cache, idemStore, routes.Services{
			Catalog:       catalogService,
			Cart:          cartService,
			Orders:        ordersService,
			Sellers:       sellersService,
			Settings:      settingsService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
