package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pulse-api/internal/models"
)

const syncJobColumns = `id, site_id, provider, status, started_at, completed_at, error_message, records_synced, created_at`

// SyncJobRepository records fact regeneration runs.
type SyncJobRepository struct {
	db *sqlx.DB
}

// NewSyncJobRepository creates a new instance of SyncJobRepository.
func NewSyncJobRepository(db *sqlx.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

// Create inserts a job row.
func (r *SyncJobRepository) Create(ctx context.Context, job *models.SyncJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO sync_jobs (id, site_id, provider, status, started_at, records_synced, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, job.ID, job.SiteID, job.Provider, job.Status, job.StartedAt, job.RecordsSynced, job.CreatedAt); err != nil {
		return fmt.Errorf("create sync job: %w", err)
	}
	return nil
}

// MarkRunning flags a queued job as started.
func (r *SyncJobRepository) MarkRunning(ctx context.Context, id string, startedAt time.Time) error {
	query := r.db.Rebind(`UPDATE sync_jobs SET status = ?, started_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, models.SyncStatusRunning, startedAt, id); err != nil {
		return fmt.Errorf("mark sync job running: %w", err)
	}
	return nil
}

// MarkCompleted stores the record count of a successful run.
func (r *SyncJobRepository) MarkCompleted(ctx context.Context, id string, records int, completedAt time.Time) error {
	query := r.db.Rebind(`UPDATE sync_jobs SET status = ?, records_synced = ?, completed_at = ?, error_message = NULL WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, models.SyncStatusCompleted, records, completedAt, id); err != nil {
		return fmt.Errorf("mark sync job completed: %w", err)
	}
	return nil
}

// MarkFailed stores the failure reason.
func (r *SyncJobRepository) MarkFailed(ctx context.Context, id, reason string, completedAt time.Time) error {
	query := r.db.Rebind(`UPDATE sync_jobs SET status = ?, error_message = ?, completed_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, models.SyncStatusFailed, reason, completedAt, id); err != nil {
		return fmt.Errorf("mark sync job failed: %w", err)
	}
	return nil
}

// FindByID returns a job by identifier.
func (r *SyncJobRepository) FindByID(ctx context.Context, id string) (*models.SyncJob, error) {
	query := r.db.Rebind(`SELECT ` + syncJobColumns + ` FROM sync_jobs WHERE id = ? LIMIT 1`)
	var job models.SyncJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find sync job: %w", err)
	}
	return &job, nil
}

// LastCompletedAt returns when the site's most recent successful sync finished, nil if never.
func (r *SyncJobRepository) LastCompletedAt(ctx context.Context, siteID string) (*time.Time, error) {
	query := r.db.Rebind(`SELECT completed_at FROM sync_jobs WHERE site_id = ? AND status = ? AND completed_at IS NOT NULL
ORDER BY completed_at DESC LIMIT 1`)
	var completed time.Time
	if err := r.db.GetContext(ctx, &completed, query, siteID, models.SyncStatusCompleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find last completed sync: %w", err)
	}
	return &completed, nil
}
