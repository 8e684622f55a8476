package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics counts pipeline outcomes per gateway.
type WebhookMetrics struct {
	outcomes *prometheus.CounterVec
}

// Outcome labels used by the pipeline.
const (
	OutcomeEnrolled  = "enrolled"
	OutcomeDuplicate = "duplicate"
	OutcomeNoOrder   = "no_order"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// NewWebhookMetrics registers the webhook counters on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_outcomes_total",
		Help: "Webhook pipeline outcomes by gateway.",
	}, []string{"gateway", "outcome"})
	reg.MustRegister(outcomes)
	return &WebhookMetrics{outcomes: outcomes}
}

// IncOutcome increments the counter for the gateway/outcome pair.
func (m *WebhookMetrics) IncOutcome(gateway, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(gateway), normalizeLabel(outcome)).Inc()
}
