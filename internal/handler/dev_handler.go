package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/middleware"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/response"
)

const syncSuccessMessage = "Dummy data generated successfully"

type syncService interface {
	SyncDummy(ctx context.Context, userID string, req models.SyncDummyRequest) (*dto.SyncResult, error)
	EnqueueDummy(ctx context.Context, userID string, req models.SyncDummyRequest) (*dto.SyncAccepted, error)
	GetJob(ctx context.Context, userID, jobID string) (*models.SyncJob, error)
}

// DevHandler exposes development-only data tooling.
type DevHandler struct {
	service syncService
}

// NewDevHandler constructs the handler.
func NewDevHandler(svc syncService) *DevHandler {
	return &DevHandler{service: svc}
}

// SyncDummy godoc
// @Summary Regenerate synthetic facts for a site
// @Tags Dev
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.SyncDummyRequest true "Sync payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /dev/sync-dummy [post]
func (h *DevHandler) SyncDummy(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.SyncDummyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sync payload"))
		return
	}

	if req.Async {
		accepted, err := h.service.EnqueueDummy(c.Request.Context(), userID, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, accepted)
		return
	}

	result, err := h.service.SyncDummy(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Summary, nil, middleware.Meta(c, map[string]interface{}{
		"sync_job_id": result.SyncJobID,
		"message":     syncSuccessMessage,
	}))
}

// SyncJob godoc
// @Summary Sync job status
// @Tags Dev
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sync job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dev/sync-jobs/{id} [get]
func (h *DevHandler) SyncJob(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.service.GetJob(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
