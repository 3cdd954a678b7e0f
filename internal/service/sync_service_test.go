package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pulse-api/internal/models"
	"github.com/noah-isme/pulse-api/internal/seeder"
	"github.com/noah-isme/pulse-api/pkg/cache"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/jobs"
	"github.com/noah-isme/pulse-api/pkg/middleware/requestid"
)

type fakeSyncJobs struct {
	mu   sync.Mutex
	jobs map[string]*models.SyncJob
	seq  int
}

func newFakeSyncJobs() *fakeSyncJobs {
	return &fakeSyncJobs{jobs: map[string]*models.SyncJob{}}
}

func (f *fakeSyncJobs) Create(ctx context.Context, job *models.SyncJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	job.ID = "job-" + string(rune('0'+f.seq))
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeSyncJobs) MarkRunning(ctx context.Context, id string, startedAt time.Time) error {
	return f.update(id, func(j *models.SyncJob) {
		j.Status = models.SyncStatusRunning
		j.StartedAt = &startedAt
	})
}

func (f *fakeSyncJobs) MarkCompleted(ctx context.Context, id string, records int, completedAt time.Time) error {
	return f.update(id, func(j *models.SyncJob) {
		j.Status = models.SyncStatusCompleted
		j.RecordsSynced = records
		j.CompletedAt = &completedAt
	})
}

func (f *fakeSyncJobs) MarkFailed(ctx context.Context, id, reason string, completedAt time.Time) error {
	return f.update(id, func(j *models.SyncJob) {
		j.Status = models.SyncStatusFailed
		j.ErrorMessage = &reason
		j.CompletedAt = &completedAt
	})
}

func (f *fakeSyncJobs) FindByID(ctx context.Context, id string) (*models.SyncJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (f *fakeSyncJobs) update(id string, fn func(*models.SyncJob)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	fn(job)
	return nil
}

type fakeFactWriter struct {
	batches []models.FactBatch
	err     error
}

func (f *fakeFactWriter) ReplaceFacts(ctx context.Context, batch models.FactBatch) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, batch)
	return nil
}

type fakeLocker struct {
	held bool
	keys []string
}

func (f *fakeLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (*cache.Lease, error) {
	f.keys = append(f.keys, name)
	if f.held {
		return nil, cache.ErrLockHeld
	}
	return &cache.Lease{}, nil
}

type fakeQueue struct {
	queued []jobs.Job
	err    error
}

func (f *fakeQueue) Enqueue(ctx context.Context, job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, job)
	return nil
}

type syncFixture struct {
	svc     *SyncService
	jobs    *fakeSyncJobs
	facts   *fakeFactWriter
	locker  *fakeLocker
	metrics *MetricsService
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		jobs:    newFakeSyncJobs(),
		facts:   &fakeFactWriter{},
		locker:  &fakeLocker{},
		metrics: NewMetricsService(),
	}
	sites := newFakeSiteRepo(models.Site{ID: "s-1", UserID: "u-1"})
	f.svc = NewSyncService(f.jobs, sites, f.facts, f.locker, time.Minute, f.metrics, nil, nil)
	f.svc.newSource = func() seeder.Source { return rand.New(rand.NewSource(7)) }
	f.svc.now = func() time.Time { return serviceToday }
	return f
}

func TestSyncDummyAppliesDefaults(t *testing.T) {
	f := newSyncFixture()

	result, err := f.svc.SyncDummy(context.Background(), "u-1", models.SyncDummyRequest{SiteID: "s-1"})
	require.NoError(t, err)

	assert.Equal(t, "s-1", result.Summary.SiteID)
	assert.Equal(t, "2025-02-09 ~ 2025-03-10", result.Summary.DateRange)
	assert.Equal(t, 30, result.Summary.PageURLsGenerated)
	assert.Equal(t, 900, result.Summary.PageMetricRows)
	assert.Equal(t, 900, result.Summary.RevenueMetricRows)
	assert.Equal(t, []string{"sync:s-1"}, f.locker.keys)

	job, err := f.jobs.FindByID(context.Background(), result.SyncJobID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusCompleted, job.Status)
	assert.Equal(t, models.SyncProviderDummy, job.Provider)
	assert.Equal(t, 1800, job.RecordsSynced)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SyncJobsCompleted)
}

func TestSyncDummyValidation(t *testing.T) {
	f := newSyncFixture()
	ctx := context.Background()

	_, err := f.svc.SyncDummy(ctx, "u-1", models.SyncDummyRequest{SiteID: "s-1", Days: 91})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.SyncDummy(ctx, "u-1", models.SyncDummyRequest{SiteID: "s-1", PageCount: 10})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.svc.SyncDummy(ctx, "u-2", models.SyncDummyRequest{SiteID: "s-1"})
	assert.ErrorIs(t, err, appErrors.ErrSiteNotFound)
	assert.Empty(t, f.jobs.jobs)
}

func TestSyncDummyLockHeld(t *testing.T) {
	f := newSyncFixture()
	f.locker.held = true

	_, err := f.svc.SyncDummy(context.Background(), "u-1", models.SyncDummyRequest{SiteID: "s-1"})
	assert.ErrorIs(t, err, appErrors.ErrSyncInProgress)
	assert.Empty(t, f.jobs.jobs)
}

func TestSyncDummyMarksFailure(t *testing.T) {
	f := newSyncFixture()
	f.facts.err = errors.New("disk full")

	_, err := f.svc.SyncDummy(context.Background(), "u-1", models.SyncDummyRequest{SiteID: "s-1", Days: 7, PageCount: 20})
	require.ErrorIs(t, err, appErrors.ErrSyncFailed)
	assert.Contains(t, appErrors.FromError(err).Message, "Dummy data generation failed: disk full")

	job, findErr := f.jobs.FindByID(context.Background(), "job-1")
	require.NoError(t, findErr)
	assert.Equal(t, models.SyncStatusFailed, job.Status)
	require.NotNil(t, job.ErrorMessage)
	assert.Equal(t, "disk full", *job.ErrorMessage)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().SyncJobsFailed)
}

func TestEnqueueDummyRunsThroughHandler(t *testing.T) {
	f := newSyncFixture()
	queue := &fakeQueue{}
	f.svc.AttachQueue(queue)
	ctx := requestid.WithValue(context.Background(), "req-7")

	accepted, err := f.svc.EnqueueDummy(ctx, "u-1", models.SyncDummyRequest{SiteID: "s-1", Days: 3, PageCount: 20})
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, accepted.Status)
	require.Len(t, queue.queued, 1)
	assert.Equal(t, JobTypeSyncDummy, queue.queued[0].Type)
	assert.Equal(t, "req-7", queue.queued[0].Payload.(syncPayload).RequestID)

	job, err := f.svc.GetJob(ctx, "u-1", accepted.SyncJobID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusPending, job.Status)

	require.NoError(t, f.svc.HandleJob(ctx, queue.queued[0]))
	job, err = f.svc.GetJob(ctx, "u-1", accepted.SyncJobID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusCompleted, job.Status)
	assert.Equal(t, 120, job.RecordsSynced)
	require.Len(t, f.facts.batches, 1)
}

func TestEnqueueDummyWithoutQueue(t *testing.T) {
	f := newSyncFixture()
	_, err := f.svc.EnqueueDummy(context.Background(), "u-1", models.SyncDummyRequest{SiteID: "s-1"})
	assert.ErrorIs(t, err, appErrors.ErrEndpointNotAvailable)
}

func TestHandleJobLockHeldThenDeadLetter(t *testing.T) {
	f := newSyncFixture()
	queue := &fakeQueue{}
	f.svc.AttachQueue(queue)
	ctx := context.Background()

	accepted, err := f.svc.EnqueueDummy(ctx, "u-1", models.SyncDummyRequest{SiteID: "s-1"})
	require.NoError(t, err)

	f.locker.held = true
	jobErr := f.svc.HandleJob(ctx, queue.queued[0])
	assert.ErrorIs(t, jobErr, appErrors.ErrSyncInProgress)

	f.svc.HandleDeadLetter(ctx, queue.queued[0], jobErr)
	job, err := f.svc.GetJob(ctx, "u-1", accepted.SyncJobID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusFailed, job.Status)
}

func TestGetJobHidesForeignJobs(t *testing.T) {
	f := newSyncFixture()
	result, err := f.svc.SyncDummy(context.Background(), "u-1", models.SyncDummyRequest{SiteID: "s-1", Days: 1, PageCount: 20})
	require.NoError(t, err)

	_, err = f.svc.GetJob(context.Background(), "u-2", result.SyncJobID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.svc.GetJob(context.Background(), "u-1", "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
