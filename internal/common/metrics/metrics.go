// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_scores_computed_total",
			Help: "Total number of match scores computed, by direction and tier",
		},
		[]string{"direction", "match_type"},
	)

	DiscoveryCandidatesRetained = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_candidates_retained",
			Help:    "Number of candidates retained per discovery run",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"trigger"},
	)

	EoiTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eoi_status_transitions_total",
			Help: "Total number of EOI status transitions",
		},
		[]string{"from", "to"},
	)
)
