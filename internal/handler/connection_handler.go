package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pulse-api/internal/middleware"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/response"
)

type connectionService interface {
	GA4Properties() []models.GA4PropertyOption
	AdSenseAccounts() []models.AdSenseAccountOption
	Upsert(ctx context.Context, userID string, req models.UpsertConnectionRequest) (*models.Connection, error)
	List(ctx context.Context, userID, siteID string) ([]models.Connection, error)
	Delete(ctx context.Context, userID, connectionID string) error
}

// ConnectionHandler exposes provider connections.
type ConnectionHandler struct {
	service connectionService
}

// NewConnectionHandler constructs the handler.
func NewConnectionHandler(svc connectionService) *ConnectionHandler {
	return &ConnectionHandler{service: svc}
}

// GA4Properties godoc
// @Summary Selectable GA4 properties
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /connections/ga4/properties [get]
func (h *ConnectionHandler) GA4Properties(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.GA4Properties(), nil)
}

// AdSenseAccounts godoc
// @Summary Selectable AdSense accounts
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /connections/adsense/accounts [get]
func (h *ConnectionHandler) AdSenseAccounts(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.AdSenseAccounts(), nil)
}

// Create godoc
// @Summary Connect a site to a provider
// @Tags Connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.UpsertConnectionRequest true "Connection payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /connections [post]
func (h *ConnectionHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.UpsertConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid connection payload"))
		return
	}

	conn, err := h.service.Upsert(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, conn)
}

// List godoc
// @Summary List a site's connections
// @Tags Connections
// @Produce json
// @Security BearerAuth
// @Param site_id query string true "Site ID"
// @Success 200 {object} response.Envelope
// @Router /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	siteID := strings.TrimSpace(c.Query("site_id"))

	conns, err := h.service.List(c.Request.Context(), userID, siteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conns, nil, middleware.Meta(c, map[string]interface{}{
		"site_id": siteID,
		"total":   len(conns),
	}))
}

// Delete godoc
// @Summary Remove a connection
// @Tags Connections
// @Security BearerAuth
// @Param id path string true "Connection ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /connections/{id} [delete]
func (h *ConnectionHandler) Delete(c *gin.Context) {
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
