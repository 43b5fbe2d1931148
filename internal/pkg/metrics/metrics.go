// Package metrics defines and registers all custom Prometheus metrics for the
// LMS API. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lms"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected authentication attempts.
// Label:
//   - reason: "missing_header", "invalid_token", "expired_token", "invalid_credentials"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected authentication attempts, by reason.",
	},
	[]string{"reason"},
)

// TokensIssuedTotal counts signed tokens.
// Label:
//   - role: the role embedded in the token
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access tokens issued, by role.",
	},
	[]string{"role"},
)

// AuthzDenialsTotal counts requests refused by an authorization gate.
// Label:
//   - gate: "role" or "ownership"
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of requests denied by an authorization gate.",
	},
	[]string{"gate"},
)

// ── Enrollment metrics ────────────────────────────────────────────────────────

// EnrollmentsCreatedTotal counts successfully inserted enrollments.
var EnrollmentsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollments_created_total",
		Help:      "Total number of enrollments created.",
	},
)

// EnrollmentConflictsTotal counts enroll attempts rejected as duplicates.
// Label:
//   - source: "precheck" (found by lookup) or "constraint" (rejected by the store's unique index)
var EnrollmentConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollment_conflicts_total",
		Help:      "Total number of duplicate enroll attempts, by where the duplicate was detected.",
	},
	[]string{"source"},
)

// ── Course cache metrics ──────────────────────────────────────────────────────

// CourseCacheTotal counts course cache lookups.
// Label:
//   - result: "hit", "miss", or "error"
var CourseCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "course_cache_total",
		Help:      "Total number of course cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Cleanup metrics ───────────────────────────────────────────────────────────

// CleanupJobsTotal counts processed cleanup jobs.
// Labels:
//   - kind: "course" or "student"
//   - result: "ok" or "error"
var CleanupJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_jobs_total",
		Help:      "Total number of enrollment cleanup jobs processed.",
	},
	[]string{"kind", "result"},
)

// CleanupQueueDepth tracks the number of jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var CleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cleanup_queue_depth",
		Help:      "Current number of cleanup jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// CleanupDuration measures how long a single cleanup job takes.
var CleanupDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cleanup_duration_seconds",
		Help:      "Duration of enrollment cleanup jobs from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)
