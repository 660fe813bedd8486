// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mca_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mca_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mca_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mca_worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	LenderMatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mca_lender_match_score",
			Help:    "Match scores produced by the qualification engine",
			Buckets: []float64{0, 25, 50, 65, 75, 85, 90, 100, 105, 108},
		},
	)

	LendersQualified = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mca_lenders_qualified",
			Help:    "Number of qualified lenders per qualification request",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
	)

	ExtractionFieldsFound = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mca_extraction_fields_found",
			Help:    "Number of non-empty fields extracted from a document",
			Buckets: prometheus.LinearBuckets(0, 2, 9),
		},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mca_webhook_deliveries_total",
			Help: "Outbound notification deliveries by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	LenderCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mca_lender_cache_requests_total",
			Help: "Lender list cache lookups by result",
		},
		[]string{"result"},
	)
)

// TrackJob marks a job active and returns a func that records its outcome.
// An empty errorCode counts the job as completed.
func TrackJob(taskType string) func(errorCode string) {
	start := time.Now()
	WorkerJobsActive.WithLabelValues(taskType).Inc()

	return func(errorCode string) {
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		if errorCode == "" {
			WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			return
		}
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	}
}
