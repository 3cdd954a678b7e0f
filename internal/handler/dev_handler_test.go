package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
)

type fakeSyncService struct {
	syncErr error
	asyncs  int
	syncs   int
}

func (f *fakeSyncService) SyncDummy(_ context.Context, _ string, req models.SyncDummyRequest) (*dto.SyncResult, error) {
	f.syncs++
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return &dto.SyncResult{Summary: models.SyncSummary{SiteID: req.SiteID, PageMetricRows: 900}, SyncJobID: "job-1"}, nil
}

func (f *fakeSyncService) EnqueueDummy(_ context.Context, _ string, req models.SyncDummyRequest) (*dto.SyncAccepted, error) {
	f.asyncs++
	return &dto.SyncAccepted{SyncJobID: "job-2", Status: models.SyncStatusPending}, nil
}

func (f *fakeSyncService) GetJob(_ context.Context, _ string, id string) (*models.SyncJob, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sync job not found")
	}
	return &models.SyncJob{ID: id, Status: models.SyncStatusCompleted}, nil
}

func TestSyncDummySynchronous(t *testing.T) {
	svc := &fakeSyncService{}
	h := NewDevHandler(svc)

	c, rec := newContext(http.MethodPost, "/dev/sync-dummy", map[string]interface{}{"site_id": "s-1"}, "u-1")
	h.SyncDummy(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "job-1", env.Meta["sync_job_id"])
	assert.Equal(t, "Dummy data generated successfully", env.Meta["message"])

	var summary models.SyncSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 900, summary.PageMetricRows)
}

func TestSyncDummyAsync(t *testing.T) {
	svc := &fakeSyncService{}
	h := NewDevHandler(svc)

	c, rec := newContext(http.MethodPost, "/dev/sync-dummy", map[string]interface{}{"site_id": "s-1", "async": true}, "u-1")
	h.SyncDummy(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, svc.asyncs)
	assert.Equal(t, 0, svc.syncs)
}

func TestSyncDummyFailure(t *testing.T) {
	h := NewDevHandler(&fakeSyncService{syncErr: appErrors.Clone(appErrors.ErrSyncFailed, "Dummy data generation failed: boom")})

	c, rec := newContext(http.MethodPost, "/dev/sync-dummy", map[string]interface{}{"site_id": "s-1"}, "u-1")
	h.SyncDummy(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "SYNC_FAILED", env.Error.Code)
	assert.Equal(t, "Dummy data generation failed: boom", env.Error.Message)
}

func TestSyncJobLookup(t *testing.T) {
	h := NewDevHandler(&fakeSyncService{})

	c, rec := newContext(http.MethodGet, "/dev/sync-jobs/job-9", nil, "u-1")
	c.Params = append(c.Params, ginParam("id", "job-9"))
	h.SyncJob(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodGet, "/dev/sync-jobs/job-1", nil, "u-1")
	c.Params = append(c.Params, ginParam("id", "job-1"))
	h.SyncJob(c)
	assert.Equal(t, http.StatusOK, rec.Code)
}
