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

	CandidatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_rejected_total",
			Help: "Candidates dropped by the filter or the score threshold",
		},
		[]string{"reason"},
	)

	MatchingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_runs_total",
			Help: "Ranking runs by roster mode (live or degraded)",
		},
		[]string{"mode"},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notification records and outbound sends by outcome",
		},
		[]string{"channel", "outcome"},
	)

	RosterCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_roster_cache_lookups_total",
			Help: "Company roster cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// Rejection reasons and outcomes used as label values.
const (
	ReasonIneligible   = "ineligible"
	ReasonOutOfArea    = "out_of_area"
	ReasonNoCapability = "no_capability"
	ReasonNoCapacity   = "no_capacity"
	ReasonLowScore     = "below_threshold"
	ReasonMalformed    = "malformed"

	ModeLive     = "live"
	ModeDegraded = "degraded"

	ChannelStore = "store"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)
