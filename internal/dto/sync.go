package dto

import "github.com/noah-isme/pulse-api/internal/models"

// SyncResult reports a finished synchronous dummy sync.
type SyncResult struct {
	Summary   models.SyncSummary
	SyncJobID string
}

// SyncAccepted acknowledges a queued dummy sync.
type SyncAccepted struct {
	SyncJobID string            `json:"sync_job_id"`
	Status    models.SyncStatus `json:"status"`
}
