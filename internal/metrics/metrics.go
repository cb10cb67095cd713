// Package metrics registers the Prometheus collectors exposed at GET
// /metrics (SPEC_FULL.md DOMAIN STACK) — operational visibility into the
// pipeline and job queue is ambient tooling, not the "reporting" named in
// spec.md's non-goals (which refers to end-user payment reporting).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups every collector this service exposes. Construct one with
// New and pass it down to the webhook handler and worker runner.
type Registry struct {
	PipelineOutcomes *prometheus.CounterVec
	WebhookRequests  *prometheus.CounterVec
	JobQueueDepth    prometheus.Gauge
	ClaimDuration    prometheus.Histogram
	ProcessDuration  prometheus.Histogram
	ReapedJobs       prometheus.Counter
}

// New registers all collectors against the default registry. Call once at
// startup.
func New() *Registry {
	return &Registry{
		PipelineOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_pipeline_outcomes_total",
			Help: "Count of pipeline outcomes by kind (created, updated, skipped, anomaly, duplicate).",
		}, []string{"outcome"}),

		WebhookRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payments_webhook_requests_total",
			Help: "Count of webhook requests by response status.",
		}, []string{"status"}),

		JobQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "payments_job_queue_depth",
			Help: "Number of pending jobs in the queue. No code in this service sets it, so it reads zero.",
		}),

		ClaimDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payments_job_claim_duration_seconds",
			Help:    "Duration of a worker's claim query.",
			Buckets: prometheus.DefBuckets,
		}),

		ProcessDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "payments_job_process_duration_seconds",
			Help:    "Duration of a single job's pipeline run, from claim to ack.",
			Buckets: prometheus.DefBuckets,
		}),

		ReapedJobs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payments_reaped_jobs_total",
			Help: "Count of jobs recovered from a stuck processing state by the reaper.",
		}),
	}
}
