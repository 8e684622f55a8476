package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cybershaala/academy-backend/internal/cron"
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

	pipelineSvc, err := pipeline.NewService(pipeline.ServiceParams{
		Orders:    ordersSvc,
		Guard:     guard,
		Persister: persister,
		Notifier:  notifier,
		Events:    eventGuard,
		Metrics:   metrics.NewWebhookMetrics(prometheus.DefaultRegisterer),
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

	reconcileJob, err := reconcile.NewJob(reconcileSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker:"+cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reconcileJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Reconcile.Interval,
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
