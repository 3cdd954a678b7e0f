package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/models"
	"github.com/noah-isme/pulse-api/internal/seeder"
	"github.com/noah-isme/pulse-api/pkg/cache"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/jobs"
	"github.com/noah-isme/pulse-api/pkg/middleware/requestid"
)

const (
	defaultSyncDays      = 30
	defaultSyncPageCount = 30

	// JobTypeSyncDummy tags queued dummy syncs.
	JobTypeSyncDummy = "sync_dummy"
)

type syncJobRepository interface {
	Create(ctx context.Context, job *models.SyncJob) error
	MarkRunning(ctx context.Context, id string, startedAt time.Time) error
	MarkCompleted(ctx context.Context, id string, records int, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string, completedAt time.Time) error
	FindByID(ctx context.Context, id string) (*models.SyncJob, error)
}

type factWriter interface {
	ReplaceFacts(ctx context.Context, batch models.FactBatch) error
}

type syncLocker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (*cache.Lease, error)
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

// syncPayload is what a queued dummy sync carries. RequestID ties worker logs to the originating request.
type syncPayload struct {
	SiteID    string
	Days      int
	PageCount int
	RequestID string
}

// SyncService regenerates synthetic facts for a site.
type SyncService struct {
	jobs      syncJobRepository
	sites     siteFinder
	facts     factWriter
	locker    syncLocker
	queue     jobEnqueuer
	lockTTL   time.Duration
	newSource func() seeder.Source
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewSyncService constructs a SyncService. locker may be nil when no lock is configured.
func NewSyncService(jobRepo syncJobRepository, sites siteFinder, facts factWriter, locker syncLocker, lockTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SyncService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = cache.NewLocker(nil, "")
	}
	return &SyncService{
		jobs:      jobRepo,
		sites:     sites,
		facts:     facts,
		locker:    locker,
		lockTTL:   lockTTL,
		newSource: func() seeder.Source { return rand.New(rand.NewSource(time.Now().UnixNano())) },
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// AttachQueue enables asynchronous syncs.
func (s *SyncService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

// SyncDummy regenerates the site's facts and waits for the result.
func (s *SyncService) SyncDummy(ctx context.Context, userID string, req models.SyncDummyRequest) (*dto.SyncResult, error) {
	req, err := s.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	lease, err := s.acquire(ctx, req.SiteID)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, lease)

	started := s.now().UTC()
	job := &models.SyncJob{SiteID: req.SiteID, Provider: models.SyncProviderDummy, Status: models.SyncStatusRunning, StartedAt: &started}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sync job")
	}

	summary, err := s.run(ctx, job.ID, syncPayload{SiteID: req.SiteID, Days: req.Days, PageCount: req.PageCount})
	if err != nil {
		return nil, err
	}
	return &dto.SyncResult{Summary: summary, SyncJobID: job.ID}, nil
}

// EnqueueDummy records a pending job and hands it to the worker queue.
func (s *SyncService) EnqueueDummy(ctx context.Context, userID string, req models.SyncDummyRequest) (*dto.SyncAccepted, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrEndpointNotAvailable, "asynchronous sync is not enabled")
	}
	req, err := s.prepare(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	job := &models.SyncJob{SiteID: req.SiteID, Provider: models.SyncProviderDummy, Status: models.SyncStatusPending}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sync job")
	}

	payload := syncPayload{SiteID: req.SiteID, Days: req.Days, PageCount: req.PageCount, RequestID: requestid.FromContext(ctx)}
	if err := s.queue.Enqueue(ctx, jobs.Job{ID: job.ID, Type: JobTypeSyncDummy, Payload: payload}); err != nil {
		_ = s.jobs.MarkFailed(ctx, job.ID, err.Error(), s.now().UTC())
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue sync job")
	}
	s.logger.Info("sync job queued", zap.String("sync_job_id", job.ID), zap.String("site_id", req.SiteID), zap.String("request_id", payload.RequestID))
	return &dto.SyncAccepted{SyncJobID: job.ID, Status: models.SyncStatusPending}, nil
}

// HandleJob runs a queued dummy sync. A held lock fails the attempt so the queue retries it.
func (s *SyncService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(syncPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}

	if payload.RequestID != "" {
		ctx = requestid.WithValue(ctx, payload.RequestID)
	}

	lease, err := s.acquire(ctx, payload.SiteID)
	if err != nil {
		return err
	}
	defer s.release(ctx, lease)

	if err := s.jobs.MarkRunning(ctx, job.ID, s.now().UTC()); err != nil {
		return err
	}
	_, err = s.run(ctx, job.ID, payload)
	return err
}

// HandleDeadLetter marks a job failed once the queue gives up on it.
func (s *SyncService) HandleDeadLetter(ctx context.Context, job jobs.Job, cause error) {
	if err := s.jobs.MarkFailed(context.WithoutCancel(ctx), job.ID, cause.Error(), s.now().UTC()); err != nil {
		s.logger.Error("failed to mark dead sync job", zap.String("sync_job_id", job.ID), zap.Error(err))
	}
}

// GetJob returns a sync job of a site the caller owns.
func (s *SyncService) GetJob(ctx context.Context, userID, jobID string) (*models.SyncJob, error) {
	notFound := appErrors.Clone(appErrors.ErrNotFound, "sync job not found")
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sync job")
	}
	if _, err := ownedSite(ctx, s.sites, job.SiteID, userID); err != nil {
		if errors.Is(err, appErrors.ErrSiteNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return job, nil
}

func (s *SyncService) prepare(ctx context.Context, userID string, req models.SyncDummyRequest) (models.SyncDummyRequest, error) {
	if req.Days == 0 {
		req.Days = defaultSyncDays
	}
	if req.PageCount == 0 {
		req.PageCount = defaultSyncPageCount
	}
	if err := s.validator.Struct(req); err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sync payload")
	}
	if _, err := ownedSite(ctx, s.sites, req.SiteID, userID); err != nil {
		return req, err
	}
	return req, nil
}

func (s *SyncService) acquire(ctx context.Context, siteID string) (*cache.Lease, error) {
	lease, err := s.locker.Acquire(ctx, "sync:"+siteID, s.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			return nil, appErrors.ErrSyncInProgress
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire sync lock")
	}
	return lease, nil
}

func (s *SyncService) release(ctx context.Context, lease *cache.Lease) {
	if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("failed to release sync lock", zap.Error(err))
	}
}

func (s *SyncService) run(ctx context.Context, jobID string, p syncPayload) (models.SyncSummary, error) {
	started := s.now()
	batch := seeder.New(s.newSource()).Generate(p.SiteID, started.UTC(), p.Days, p.PageCount)

	err := s.facts.ReplaceFacts(ctx, batch)
	records := len(batch.Traffic) + len(batch.Revenue)
	if err == nil {
		err = s.jobs.MarkCompleted(ctx, jobID, records, s.now().UTC())
	}
	if err != nil {
		if markErr := s.jobs.MarkFailed(context.WithoutCancel(ctx), jobID, err.Error(), s.now().UTC()); markErr != nil {
			s.logger.Error("failed to mark sync job failed", zap.String("sync_job_id", jobID), zap.Error(markErr))
		}
		s.metrics.ObserveSync(models.SyncStatusFailed, 0, s.now().Sub(started))
		s.logger.Error("dummy sync failed", zap.String("sync_job_id", jobID), zap.String("site_id", p.SiteID),
			zap.String("request_id", requestid.FromContext(ctx)), zap.Error(err))
		return models.SyncSummary{}, appErrors.Wrap(err, appErrors.ErrSyncFailed.Code, appErrors.ErrSyncFailed.Status,
			fmt.Sprintf("Dummy data generation failed: %v", err))
	}

	s.metrics.ObserveSync(models.SyncStatusCompleted, records, s.now().Sub(started))
	s.logger.Info("dummy sync completed", zap.String("sync_job_id", jobID), zap.String("site_id", p.SiteID),
		zap.String("request_id", requestid.FromContext(ctx)), zap.Int("records", records))
	return seeder.Summary(batch, p.PageCount), nil
}
