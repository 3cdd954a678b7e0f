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
	"github.com/noah-isme/pulse-api/pkg/export"
)

type fakeInsightsService struct {
	lastWindow dto.WindowQuery
	lastTop    dto.TopPagesQuery
	lastKey    string
	err        error
}

func (f *fakeInsightsService) HomeKPIs(_ context.Context, _ string, q dto.WindowQuery) (*dto.HomeKPIs, dto.WindowMeta, error) {
	f.lastWindow = q
	if f.err != nil {
		return nil, dto.WindowMeta{}, f.err
	}
	return &dto.HomeKPIs{Users: 10, Pageviews: 20}, dto.WindowMeta{SiteID: q.SiteID, RangeDays: q.RangeDays, DateFrom: "2025-03-04", DateTo: "2025-03-10"}, nil
}

func (f *fakeInsightsService) TopPages(_ context.Context, _ string, q dto.TopPagesQuery) (*dto.TopPagesResult, error) {
	f.lastTop = q
	if f.err != nil {
		return nil, f.err
	}
	q.Sort = "revenue"
	return &dto.TopPagesResult{Items: []dto.TopPageItem{{PageKey: "abc", PageURL: "/a"}}, Total: 41, Query: q}, nil
}

func (f *fakeInsightsService) Export(_ context.Context, _ string, q dto.ExportQuery) (*export.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &export.File{Name: "top-pages.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("page_key\n")}, nil
}

func (f *fakeInsightsService) PageDetail(_ context.Context, _ string, q dto.WindowQuery, key string) (*dto.PageDetail, dto.WindowMeta, error) {
	f.lastKey = key
	if f.err != nil {
		return nil, dto.WindowMeta{}, f.err
	}
	return &dto.PageDetail{PageKey: key}, dto.WindowMeta{SiteID: q.SiteID, RangeDays: q.RangeDays}, nil
}

func (f *fakeInsightsService) Actions(_ context.Context, _ string, q dto.WindowQuery) ([]dto.ActionItem, error) {
	f.lastWindow = q
	if f.err != nil {
		return nil, f.err
	}
	return []dto.ActionItem{{ActionID: "action_1", Priority: 3}}, nil
}

func TestHomeKPIsDefaultsRange(t *testing.T) {
	svc := &fakeInsightsService{}
	h := NewInsightsHandler(svc)

	c, rec := newContext(http.MethodGet, "/home/kpis?site_id=s-1", nil, "u-1")
	h.HomeKPIs(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.WindowQuery{SiteID: "s-1", RangeDays: 7}, svc.lastWindow)
	env := decode(t, rec)
	assert.Equal(t, "2025-03-10", env.Meta["date_to"])
	assert.Equal(t, float64(7), env.Meta["range_days"])
}

func TestHomeKPIsValidatesQuery(t *testing.T) {
	h := NewInsightsHandler(&fakeInsightsService{})

	c, rec := newContext(http.MethodGet, "/home/kpis", nil, "u-1")
	h.HomeKPIs(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodGet, "/home/kpis?site_id=s-1&range=week", nil, "u-1")
	h.HomeKPIs(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHomeKPIsPropagatesInvalidRange(t *testing.T) {
	h := NewInsightsHandler(&fakeInsightsService{err: appErrors.ErrInvalidRange})

	c, rec := newContext(http.MethodGet, "/home/kpis?site_id=s-1&range=14", nil, "u-1")
	h.HomeKPIs(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_RANGE", decode(t, rec).Error.Code)
}

func TestTopPagesMeta(t *testing.T) {
	svc := &fakeInsightsService{}
	h := NewInsightsHandler(svc)

	c, rec := newContext(http.MethodGet, "/pages/top?site_id=s-1&range=30&page=3&limit=5&search=%20blog%20", nil, "u-1")
	h.TopPages(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.lastTop.Page)
	assert.Equal(t, 5, svc.lastTop.Limit)
	assert.Equal(t, " blog ", svc.lastTop.Search)

	env := decode(t, rec)
	assert.Equal(t, float64(41), env.Meta["total"])
	assert.Equal(t, "revenue", env.Meta["sort"])
	assert.Equal(t, " blog ", env.Meta["search"])
	require.NotNil(t, env.Pagination)
	assert.Equal(t, models.Pagination{Page: 3, PageSize: 5, TotalCount: 41}, *env.Pagination)

	var items []dto.TopPageItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)
}

func TestTopPagesNullSearch(t *testing.T) {
	h := NewInsightsHandler(&fakeInsightsService{})

	c, rec := newContext(http.MethodGet, "/pages/top?site_id=s-1", nil, "u-1")
	h.TopPages(c)

	env := decode(t, rec)
	assert.Contains(t, env.Meta, "search")
	assert.Nil(t, env.Meta["search"])
}

func TestExportStreamsAttachment(t *testing.T) {
	h := NewInsightsHandler(&fakeInsightsService{})

	c, rec := newContext(http.MethodGet, "/pages/top/export?site_id=s-1&format=csv", nil, "u-1")
	h.ExportTopPages(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="top-pages.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "page_key\n", rec.Body.String())
}

func TestPageDetailRequiresKey(t *testing.T) {
	svc := &fakeInsightsService{}
	h := NewInsightsHandler(svc)

	c, rec := newContext(http.MethodGet, "/pages/detail?site_id=s-1", nil, "u-1")
	h.PageDetail(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodGet, "/pages/detail?site_id=s-1&page_key=8a5edab28263", nil, "u-1")
	h.PageDetail(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8a5edab28263", svc.lastKey)
}

func TestPageDetailNotFound(t *testing.T) {
	h := NewInsightsHandler(&fakeInsightsService{err: appErrors.ErrPageNotFound})

	c, rec := newContext(http.MethodGet, "/pages/detail?site_id=s-1&page_key=000000000000", nil, "u-1")
	h.PageDetail(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PAGE_NOT_FOUND", decode(t, rec).Error.Code)
}

func TestActionsMeta(t *testing.T) {
	h := NewInsightsHandler(&fakeInsightsService{})

	c, rec := newContext(http.MethodGet, "/actions?site_id=s-1&range=90", nil, "u-1")
	h.Actions(c)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, float64(1), env.Meta["total"])
	assert.Equal(t, float64(90), env.Meta["range_days"])
}
