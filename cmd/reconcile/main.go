package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/internal/notify"
	"github.com/cybershaala/academy-backend/internal/orders"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	"github.com/cybershaala/academy-backend/internal/reconcile"
	"github.com/cybershaala/academy-backend/pkg/config"
	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/redis"
)

const webhookEventTTL = 24 * time.Hour

// One-shot reconciliation sweep. Detects orders without enrollments and,
// with -reprocess, rebuilds them from the stored order snapshots.
func main() {
	logg := logger.New(logger.Options{ServiceName: "reconcile"})

	_ = godotenv.Load()

	reprocess := flag.Bool("reprocess", false, "rebuild enrollments for missing orders")
	batchSize := flag.Int("batch-size", 0, "orders per page (defaults to configured batch size)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "reconcile",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(logg, "redis", err)
	defer redisClient.Close()

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:   orders.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	requireResource(logg, "orders service", err)

	enrollRepo := enrollments.NewRepository(dbClient.DB())
	guard, err := enrollments.NewGuard(enrollRepo)
	requireResource(logg, "enrollment guard", err)

	persister, err := enrollments.NewPersister(enrollments.PersisterParams{
		Repo:   enrollRepo,
		Logger: logg,
	})
	requireResource(logg, "enrollment persister", err)

	notifier, err := notify.NewTrigger(notify.TriggerParams{
		Config: cfg.Notify,
		Logger: logg,
	})
	requireResource(logg, "notification trigger", err)

	eventGuard, err := pipeline.NewEventGuard(redisClient, webhookEventTTL, "webhook-event")
	requireResource(logg, "event guard", err)

	pipelineSvc, err := pipeline.NewService(pipeline.ServiceParams{
		Orders:    ordersSvc,
		Guard:     guard,
		Persister: persister,
		Notifier:  notifier,
		Events:    eventGuard,
		Logger:    logg,
	})
	requireResource(logg, "pipeline service", err)

	size := cfg.Reconcile.BatchSize
	if *batchSize > 0 {
		size = *batchSize
	}

	reconcileSvc, err := reconcile.NewService(reconcile.ServiceParams{
		Orders:    ordersSvc,
		Guard:     guard,
		Pipeline:  pipelineSvc,
		BatchSize: size,
		Reprocess: *reprocess,
		OnMissing: printMissing,
		Logger:    logg,
	})
	requireResource(logg, "reconciliation service", err)

	summary, err := reconcileSvc.Run(ctx)
	if summary != nil {
		fmt.Printf("scanned=%d missing=%d reprocessed=%d\n", summary.Scanned, summary.Missing, summary.Reprocessed)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "reconciliation finished with errors: %v\n", err)
		os.Exit(1)
	}
}

func printMissing(item reconcile.MissingOrder, result *pipeline.Result, err error) {
	switch {
	case err != nil:
		fmt.Printf("missing %s gateway=%s reprocess=error err=%q\n", item.OrderID, item.Order.Gateway, err.Error())
	case result != nil:
		fmt.Printf("missing %s gateway=%s reprocess=%s\n", item.OrderID, item.Order.Gateway, result.Outcome)
	default:
		fmt.Printf("missing %s gateway=%s status=%s\n", item.OrderID, item.Order.Gateway, item.Order.Status)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to bootstrap "+resource, err)
	os.Exit(1)
}
