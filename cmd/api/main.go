package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cybershaala/academy-backend/api/routes"
	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/internal/notify"
	"github.com/cybershaala/academy-backend/internal/orders"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	"github.com/cybershaala/academy-backend/internal/reconcile"
	"github.com/cybershaala/academy-backend/pkg/config"
	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/metrics"
	"github.com/cybershaala/academy-backend/pkg/migrate"
	"github.com/cybershaala/academy-backend/pkg/redis"
)

const webhookEventTTL = 24 * time.Hour

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

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	enrollRepo := enrollments.NewRepository(dbClient.DB())
	guard, err := enrollments.NewGuard(enrollRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create enrollment guard", err)
		os.Exit(1)
	}
	persister, err := enrollments.NewPersister(enrollments.PersisterParams{
		Repo:   enrollRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create enrollment persister", err)
		os.Exit(1)
	}

	notifier, err := notify.NewTrigger(notify.TriggerParams{
		Config: cfg.Notify,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification trigger", err)
		os.Exit(1)
	}

	eventGuard, err := pipeline.NewEventGuard(redisClient, webhookEventTTL, "webhook-event")
	if err != nil {
		logg.Error(context.Background(), "failed to create event guard", err)
		os.Exit(1)
	}

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)

	pipelineSvc, err := pipeline.NewService(pipeline.ServiceParams{
		Orders:    ordersSvc,
		Guard:     guard,
		Persister: persister,
		Notifier:  notifier,
		Events:    eventGuard,
		Metrics:   webhookMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline service", err)
		os.Exit(1)
	}

	reconcileSvc, err := reconcile.NewService(reconcile.ServiceParams{
		Orders:    ordersSvc,
		Guard:     guard,
		Pipeline:  pipelineSvc,
		BatchSize: cfg.Reconcile.BatchSize,
		Reprocess: cfg.Reconcile.Reprocess,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation service", err)
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

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, pipelineSvc, reconcileSvc, persister, webhookMetrics),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
