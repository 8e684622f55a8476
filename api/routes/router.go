package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cybershaala/academy-backend/api/controllers"
	webhookcontrollers "github.com/cybershaala/academy-backend/api/controllers/webhooks"
	"github.com/cybershaala/academy-backend/api/middleware"
	"github.com/cybershaala/academy-backend/internal/enrollments"
	"github.com/cybershaala/academy-backend/internal/gateways"
	"github.com/cybershaala/academy-backend/internal/pipeline"
	"github.com/cybershaala/academy-backend/internal/reconcile"
	"github.com/cybershaala/academy-backend/pkg/config"
	"github.com/cybershaala/academy-backend/pkg/db"
	"github.com/cybershaala/academy-backend/pkg/logger"
	"github.com/cybershaala/academy-backend/pkg/metrics"
	"github.com/cybershaala/academy-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	pipelineSvc *pipeline.Service,
	reconcileSvc *reconcile.Service,
	enrollmentsSvc *enrollments.Persister,
	webhookMetrics *metrics.WebhookMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	readyChecks := []controllers.ReadyCheck{}
	if dbClient != nil {
		readyChecks = append(readyChecks, controllers.ReadyCheck{Name: "postgres", Check: dbClient.Ping})
	}
	if redisClient != nil {
		readyChecks = append(readyChecks, controllers.ReadyCheck{Name: "redis", Check: redisClient.Ping})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks...))
	})

	r.Handle("/metrics", promhttp.Handler())

	razorpay := gateways.Razorpay{WebhookSecret: cfg.Razorpay.WebhookSecret}
	paytm := gateways.Paytm{MerchantKey: cfg.Paytm.MerchantKey}
	phonePe := gateways.PhonePe{
		SaltKey:       cfg.PhonePe.SaltKey,
		SaltIndex:     cfg.PhonePe.SaltIndex,
		AllowUnsigned: cfg.PhonePe.AllowUnsigned,
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(razorpay, pipelineSvc, webhookMetrics, logg))
		r.Post("/paytm", webhookcontrollers.PaytmWebhook(paytm, pipelineSvc, webhookMetrics, logg))
		r.Post("/phonepe", webhookcontrollers.PhonePeWebhook(phonePe, pipelineSvc, webhookMetrics, logg))
	})

	r.Route("/api/admin/v1/orders", func(r chi.Router) {
		r.With(middleware.AdminSecret(cfg.Admin.EnrollmentSecret, false, logg)).
			Get("/missing", controllers.AdminMissingOrders(reconcileSvc, logg))
		r.With(middleware.AdminSecret(cfg.Admin.EnrollmentSecret, true, logg)).
			Post("/reprocess", controllers.AdminReprocessOrder(pipelineSvc, cfg.Admin.EnrollmentSecret, logg))
	})

	r.Route("/api/v1/enrollments", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/", controllers.ListEnrollments(enrollmentsSvc, logg))
	})

	return r
}
