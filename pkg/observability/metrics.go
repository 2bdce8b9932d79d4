package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	RunsTotal        *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
	StepsSkipped     *prometheus.CounterVec
	WebhookRejected  *prometheus.CounterVec
	ScheduleFirings  *prometheus.CounterVec
	TokensMinted     prometheus.Counter
	PermissionDenied *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "runs_total",
			Help:      "Workflow runs by workflow name and final status.",
		}, []string{"workflow", "status"}),

		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gantry",
			Name:      "step_duration_seconds",
			Help:      "Wall time of executed steps.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"workflow", "job"}),

		StepsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "steps_skipped_total",
			Help:      "Steps skipped because an earlier step in the job failed.",
		}, []string{"workflow", "job"}),

		WebhookRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "webhook_rejected_total",
			Help:      "Event deliveries rejected at intake.",
		}, []string{"reason"}),

		ScheduleFirings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "schedule_firings_total",
			Help:      "Synthetic schedule events emitted by the cron scheduler.",
		}, []string{"workflow"}),

		TokensMinted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "publish_tokens_minted_total",
			Help:      "Short-lived publish tokens minted for id-token: write jobs.",
		}),

		PermissionDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gantry",
			Name:      "permission_denied_total",
			Help:      "Steps failed because the job's grants did not cover a required scope.",
		}, []string{"workflow", "scope"}),
	}
}

// ObserveStep records one executed (not skipped) step.
func (m *Metrics) ObserveStep(workflow, job string, d time.Duration) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(workflow, job).Observe(d.Seconds())
}
