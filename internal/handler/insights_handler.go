package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/insights"
	"github.com/noah-isme/pulse-api/internal/middleware"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/export"
	"github.com/noah-isme/pulse-api/pkg/response"
)

type insightsService interface {
	HomeKPIs(ctx context.Context, userID string, q dto.WindowQuery) (*dto.HomeKPIs, dto.WindowMeta, error)
	TopPages(ctx context.Context, userID string, q dto.TopPagesQuery) (*dto.TopPagesResult, error)
	Export(ctx context.Context, userID string, q dto.ExportQuery) (*export.File, error)
	PageDetail(ctx context.Context, userID string, q dto.WindowQuery, pageKey string) (*dto.PageDetail, dto.WindowMeta, error)
	Actions(ctx context.Context, userID string, q dto.WindowQuery) ([]dto.ActionItem, error)
}

// InsightsHandler serves the dashboard reads: KPIs, page tables, drill-downs and actions.
type InsightsHandler struct {
	service insightsService
}

// NewInsightsHandler constructs the handler.
func NewInsightsHandler(svc insightsService) *InsightsHandler {
	return &InsightsHandler{service: svc}
}

// HomeKPIs godoc
// @Summary Headline KPIs for a site
// @Tags Home
// @Produce json
// @Security BearerAuth
// @Param site_id query string true "Site ID"
// @Param range query int false "Window in days (7, 30, 90)"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /home/kpis [get]
func (h *InsightsHandler) HomeKPIs(c *gin.Context) {
	userID, q, ok := h.window(c)
	if !ok {
		return
	}
	kpis, meta, err := h.service.HomeKPIs(c.Request.Context(), userID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, kpis, nil, middleware.Meta(c, windowMetaMap(meta)))
}

// TopPages godoc
// @Summary Ranked page table
// @Tags Pages
// @Produce json
// @Security BearerAuth
// @Param site_id query string true "Site ID"
// @Param range query int false "Window in days (7, 30, 90)"
// @Param search query string false "URL substring"
// @Param sort query string false "revenue | rpm | pageviews"
// @Param page query int false "Page number"
// @Param limit query int false "Rows per page (1-100)"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /pages/top [get]
func (h *InsightsHandler) TopPages(c *gin.Context) {
	userID, window, ok := h.window(c)
	if !ok {
		return
	}
	page, err := queryInt(c, "page", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := queryInt(c, "limit", insights.DefaultLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	q := dto.TopPagesQuery{
		WindowQuery: window,
		Search:      c.Query("search"),
		Sort:        c.Query("sort"),
		Page:        page,
		Limit:       limit,
	}
	result, err := h.service.TopPages(c.Request.Context(), userID, q)
	if err != nil {
		response.Error(c, err)
		return
	}

	var search interface{}
	if result.Query.Search != "" {
		search = result.Query.Search
	}
	pagination := &models.Pagination{Page: result.Query.Page, PageSize: result.Query.Limit, TotalCount: result.Total}
	response.JSON(c, http.StatusOK, result.Items, pagination, middleware.Meta(c, map[string]interface{}{
		"site_id":    result.Query.SiteID,
		"range_days": result.Query.RangeDays,
		"sort":       result.Query.Sort,
		"search":     search,
		"page":       result.Query.Page,
		"limit":      result.Query.Limit,
		"total":      result.Total,
	}))
}

// ExportTopPages godoc
// @Summary Download the ranked page table
// @Tags Pages
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param site_id query string true "Site ID"
// @Param range query int false "Window in days (7, 30, 90)"
// @Param search query string false "URL substring"
// @Param sort query string false "revenue | rpm | pageviews"
// @Param format query string false "csv | pdf"
// @Success 200 {file} file
// @Router /pages/top/export [get]
func (h *InsightsHandler) ExportTopPages(c *gin.Context) {
	userID, window, ok := h.window(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), userID, dto.ExportQuery{
		WindowQuery: window,
		Search:      c.Query("search"),
		Sort:        c.Query("sort"),
		Format:      c.Query("format"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file)
}

// PageDetail godoc
// @Summary Drill-down for one page
// @Tags Pages
// @Produce json
// @Security BearerAuth
// @Param site_id query string true "Site ID"
// @Param page_key query string true "Page key"
// @Param range query int false "Window in days (7, 30, 90)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /pages/detail [get]
func (h *InsightsHandler) PageDetail(c *gin.Context) {
	userID, q, ok := h.window(c)
	if !ok {
		return
	}
	pageKey := strings.TrimSpace(c.Query("page_key"))
	if pageKey == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page_key is required"))
		return
	}

	detail, meta, err := h.service.PageDetail(c.Request.Context(), userID, q, pageKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil, middleware.Meta(c, windowMetaMap(meta)))
}

// Actions godoc
// @Summary Recommended actions
// @Tags Actions
// @Produce json
// @Security BearerAuth
// @Param site_id query string true "Site ID"
// @Param range query int false "Window in days (7, 30, 90)"
// @Success 200 {object} response.Envelope
// @Router /actions [get]
func (h *InsightsHandler) Actions(c *gin.Context) {
	userID, q, ok := h.window(c)
	if !ok {
		return
	}
	actions, err := h.service.Actions(c.Request.Context(), userID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, actions, nil, middleware.Meta(c, map[string]interface{}{
		"site_id":    q.SiteID,
		"range_days": q.RangeDays,
		"total":      len(actions),
	}))
}

func (h *InsightsHandler) window(c *gin.Context) (string, dto.WindowQuery, bool) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return "", dto.WindowQuery{}, false
	}
	q, err := windowQuery(c)
	if err != nil {
		response.Error(c, err)
		return "", dto.WindowQuery{}, false
	}
	return userID, q, true
}
