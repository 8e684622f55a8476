package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics instruments the scheduled jobs run by the cron worker,
// currently the reconciliation sweep. A zero value is a no-op, so callers
// that do not expose metrics can pass nil everywhere.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
}

const (
	runStatusSuccess = "success"
	runStatusFailure = "failure"
)

// NewCronJobMetrics registers the job collectors on reg. A nil registerer
// yields an inert instance.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cron_job_duration_seconds",
			Help:    "Wall-clock duration of scheduled worker jobs such as the enrollment reconciliation sweep.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_runs_total",
			Help: "Completed scheduled job runs partitioned by job name and outcome status.",
		}, []string{"job", "status"}),
	}
	reg.MustRegister(m.duration, m.runs)
	return m
}

// ObserveDuration records how long the named job took.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts a run of the named job that completed cleanly.
func (c *CronJobMetrics) IncSuccess(job string) {
	c.incRun(job, runStatusSuccess)
}

// IncFailure counts a run of the named job that returned an error.
func (c *CronJobMetrics) IncFailure(job string) {
	c.incRun(job, runStatusFailure)
}

func (c *CronJobMetrics) incRun(job, status string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job), status).Inc()
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
