// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendance"

var (
	// AttendanceRecorded counts persisted check-ins by kind (teacher, student).
	AttendanceRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_created_total",
		Help:      "Attendance records persisted.",
	}, []string{"kind"})

	// AttendanceFailed counts check-ins that could not be persisted.
	AttendanceFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_failures_total",
		Help:      "Attendance records rejected or failed to persist.",
	}, []string{"kind", "reason"})

	RosterCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roster_cache_lookups_total",
		Help:      "Roster cache lookups by roster and outcome (hit, miss, error).",
	}, []string{"roster", "result"})

	SeedRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_runs_total",
		Help:      "Demo data seed runs by result.",
	}, []string{"result"})

	SeedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_rows_inserted_total",
		Help:      "Rows inserted by the demo data seeder, per table.",
	}, []string{"table"})

	SeedDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "seed_duration_seconds",
		Help:      "Wall time of a complete seed run.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	SeedJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seed_jobs_total",
		Help:      "Queued seed jobs by state transition.",
	}, []string{"state"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by a rate limiter, per limiter scope.",
	}, []string{"scope"})
)
