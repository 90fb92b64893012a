package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jimmynenos/ordering-backend/api/controllers"
	"github.com/jimmynenos/ordering-backend/api/routes"
	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/internal/orders"
	"github.com/jimmynenos/ordering-backend/internal/session"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
	"github.com/jimmynenos/ordering-backend/pkg/redis"
)

type menuResolver struct {
	svc *menu.Service
}

func (r menuResolver) ItemByID(id menu.ItemID) *menu.Item {
	item, err := r.svc.ItemByID(id)
	if err != nil {
		return nil
	}
	return item
}

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

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	promRegistry := prometheus.NewRegistry()
	orderingMetrics := metrics.NewOrderingMetrics(promRegistry)

	menuSvc, err := menu.NewService(
		menu.NewCatalogClient(cfg.Catalog),
		menu.NewCache(redisClient, cfg.Catalog.CacheTTL),
		logg,
		orderingMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu service", err)
		os.Exit(1)
	}
	if err := menuSvc.Load(context.Background()); err != nil {
		// The server still comes up; searches fail with a dependency error
		// until a later load succeeds.
		logg.Warn(logg.WithField(context.Background(), "load_error", err.Error()),
			"initial menu load failed")
	}

	registry := session.NewRegistry(menuResolver{svc: menuSvc}, cfg.Session.IdleTTL, logg)
	registry.StartReaper(context.Background(), cfg.Session.ReapInterval)

	finalizer, err := orders.NewFinalizer(orders.NewHTTPSubmitter(cfg.Catalog), logg, orderingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create finalizer", err)
		os.Exit(1)
	}

	checks := map[string]controllers.ReadyCheck{
		"menu": func(context.Context) error {
			_, err := menuSvc.Index()
			return err
		},
	}
	if redisClient != nil {
		checks["redis"] = redisClient.Ping
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

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			Menu:      menuSvc,
			Registry:  registry,
			Finalizer: finalizer,
			Metrics:   orderingMetrics,
			Gatherer:  promRegistry,
			Checks:    checks,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
