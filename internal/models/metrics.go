package models

import "time"

// SystemMetrics is a point-in-time summary of process instrumentation.
type SystemMetrics struct {
	RequestsTotal              uint64    `json:"requests_total"`
	AverageRequestDurationMs   float64   `json:"average_request_duration_ms"`
	FactQueryCount             uint64    `json:"fact_query_count"`
	AverageFactQueryDurationMs float64   `json:"average_fact_query_duration_ms"`
	SyncJobsCompleted          uint64    `json:"sync_jobs_completed"`
	SyncJobsFailed             uint64    `json:"sync_jobs_failed"`
	Goroutines                 int       `json:"goroutines"`
	GeneratedAt                time.Time `json:"generated_at"`
}
