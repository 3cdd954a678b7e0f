package models

import "time"

// SyncStatus tracks the lifecycle of a fact regeneration.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncProviderDummy marks jobs that load synthetic facts.
const SyncProviderDummy = "dummy"

// SyncJob is a row of sync_jobs.
type SyncJob struct {
	ID            string     `db:"id" json:"id"`
	SiteID        string     `db:"site_id" json:"site_id"`
	Provider      string     `db:"provider" json:"provider"`
	Status        SyncStatus `db:"status" json:"status"`
	StartedAt     *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage  *string    `db:"error_message" json:"error_message,omitempty"`
	RecordsSynced int        `db:"records_synced" json:"records_synced"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// SyncDummyRequest asks for synthetic facts over the trailing Days for PageCount pages.
type SyncDummyRequest struct {
	SiteID    string `json:"site_id" validate:"required"`
	Days      int    `json:"days" validate:"min=1,max=90"`
	PageCount int    `json:"page_count" validate:"min=20,max=50"`
	Async     bool   `json:"async"`
}

// SyncSummary reports what a dummy sync wrote.
type SyncSummary struct {
	SiteID            string `json:"site_id"`
	DateRange         string `json:"date_range"`
	PageURLsGenerated int    `json:"page_urls_generated"`
	PageMetricRows    int    `json:"page_metric_rows"`
	RevenueMetricRows int    `json:"revenue_metric_rows"`
}
