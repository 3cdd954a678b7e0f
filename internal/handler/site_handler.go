package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pulse-api/internal/middleware"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/response"
)

type siteService interface {
	Create(ctx context.Context, userID string, req models.CreateSiteRequest) (*models.Site, error)
	List(ctx context.Context, userID string) ([]models.Site, error)
	Get(ctx context.Context, userID, siteID string) (*models.Site, error)
	Delete(ctx context.Context, userID, siteID string) error
}

// SiteHandler exposes site management.
type SiteHandler struct {
	service siteService
}

// NewSiteHandler constructs the handler.
func NewSiteHandler(svc siteService) *SiteHandler {
	return &SiteHandler{service: svc}
}

// Create godoc
// @Summary Register a site
// @Tags Sites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateSiteRequest true "Site payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sites [post]
func (h *SiteHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site payload"))
		return
	}

	site, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, site)
}

// List godoc
// @Summary List sites
// @Tags Sites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /sites [get]
func (h *SiteHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sites, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sites, nil, middleware.Meta(c, map[string]interface{}{"total": len(sites)}))
}

// Get godoc
// @Summary Get a site
// @Tags Sites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Site ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sites/{id} [get]
func (h *SiteHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	site, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, site, nil)
}

// Delete godoc
// @Summary Delete a site and its data
// @Tags Sites
// @Security BearerAuth
// @Param id path string true "Site ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /sites/{id} [delete]
func (h *SiteHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
