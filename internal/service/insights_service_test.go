package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/insights"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
)

var serviceToday = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type memFacts struct {
	traffic []models.TrafficFact
	revenue []models.RevenueFact
	err     error
}

func (m *memFacts) TrafficFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.TrafficFact, error) {
	if m.err != nil {
		return nil, m.err
	}
	r := insights.NewDateRange(from, to)
	var out []models.TrafficFact
	for _, f := range m.traffic {
		if f.SiteID == siteID && r.Contains(f.Date) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFacts) RevenueFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.RevenueFact, error) {
	if m.err != nil {
		return nil, m.err
	}
	r := insights.NewDateRange(from, to)
	var out []models.RevenueFact
	for _, f := range m.revenue {
		if f.SiteID == siteID && r.Contains(f.Date) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFacts) PageURLs(ctx context.Context, siteID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	seen := map[string]bool{}
	var urls []string
	for _, f := range m.traffic {
		if f.SiteID == siteID && !seen[f.PageURL] {
			seen[f.PageURL] = true
			urls = append(urls, f.PageURL)
		}
	}
	for _, f := range m.revenue {
		if f.SiteID == siteID && !seen[f.PageURL] {
			seen[f.PageURL] = true
			urls = append(urls, f.PageURL)
		}
	}
	return urls, nil
}

type fakeLastSync struct {
	at *time.Time
}

func (f fakeLastSync) LastCompletedAt(ctx context.Context, siteID string) (*time.Time, error) {
	return f.at, nil
}

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func serviceFacts() *memFacts {
	day := insights.Day(serviceToday)
	return &memFacts{
		traffic: []models.TrafficFact{
			{SiteID: "s-1", Date: day, PageURL: "/a", Pageviews: 1000, Users: 300},
			{SiteID: "s-1", Date: day.AddDate(0, 0, -1), PageURL: "/b", Pageviews: 200, Users: 100},
			{SiteID: "s-1", Date: day.AddDate(0, 0, -9), PageURL: "/a", Pageviews: 400, Users: 120},
		},
		revenue: []models.RevenueFact{
			{SiteID: "s-1", Date: day, PageURL: "/a", Revenue: 5, Impressions: 2000, Clicks: 20},
			{SiteID: "s-1", Date: day.AddDate(0, 0, -1), PageURL: "/b", Revenue: 4, Impressions: 500, Clicks: 5},
			{SiteID: "s-1", Date: day.AddDate(0, 0, -9), PageURL: "/a", Revenue: 2},
		},
	}
}

func newInsightsService(facts insights.FactStore, metrics *MetricsService) *InsightsService {
	synced := serviceToday.Add(-time.Hour)
	sites := newFakeSiteRepo(models.Site{ID: "s-1", UserID: "u-1"})
	svc := NewInsightsService(facts, sites, fakeLastSync{at: &synced}, constSource(0.5), metrics, nil)
	svc.now = func() time.Time { return serviceToday }
	return svc
}

func TestInsightsHomeKPIs(t *testing.T) {
	svc := newInsightsService(serviceFacts(), nil)

	kpis, meta, err := svc.HomeKPIs(context.Background(), "u-1", dto.WindowQuery{SiteID: "s-1", RangeDays: 7})
	require.NoError(t, err)

	assert.Equal(t, int64(300), kpis.Users)
	assert.Equal(t, int64(1200), kpis.Pageviews)
	assert.InDelta(t, 9.0, kpis.Revenue, 1e-9)
	assert.InDelta(t, 7.5, kpis.RPM, 1e-9)
	require.NotNil(t, kpis.CTR)
	assert.InDelta(t, 0.01, *kpis.CTR, 1e-9)
	require.NotNil(t, kpis.LastSyncedAt)

	assert.Equal(t, dto.WindowMeta{SiteID: "s-1", RangeDays: 7, DateFrom: "2025-03-04", DateTo: "2025-03-10"}, meta)
}

func TestInsightsRejectsBadInput(t *testing.T) {
	svc := newInsightsService(serviceFacts(), nil)
	ctx := context.Background()

	_, _, err := svc.HomeKPIs(ctx, "u-1", dto.WindowQuery{SiteID: "s-1", RangeDays: 14})
	assert.ErrorIs(t, err, appErrors.ErrInvalidRange)

	_, _, err = svc.HomeKPIs(ctx, "u-2", dto.WindowQuery{SiteID: "s-1", RangeDays: 7})
	assert.ErrorIs(t, err, appErrors.ErrSiteNotFound)

	_, err = svc.TopPages(ctx, "u-1", dto.TopPagesQuery{WindowQuery: dto.WindowQuery{SiteID: "s-1", RangeDays: 7}, Sort: "users", Page: 1, Limit: 20})
	assert.ErrorIs(t, err, appErrors.ErrInvalidSort)

	_, err = svc.TopPages(ctx, "u-1", dto.TopPagesQuery{WindowQuery: dto.WindowQuery{SiteID: "s-1", RangeDays: 7}, Page: 1, Limit: 101})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(ctx, "u-1", dto.ExportQuery{WindowQuery: dto.WindowQuery{SiteID: "s-1", RangeDays: 7}, Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestInsightsTopPages(t *testing.T) {
	svc := newInsightsService(serviceFacts(), nil)
	base := dto.TopPagesQuery{WindowQuery: dto.WindowQuery{SiteID: "s-1", RangeDays: 7}, Page: 1, Limit: 20}

	result, err := svc.TopPages(context.Background(), "u-1", base)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, "revenue", result.Query.Sort)

	top := result.Items[0]
	assert.Equal(t, "/a", top.PageURL)
	assert.Equal(t, insights.EncodePageKey("/a"), top.PageKey)
	require.NotNil(t, top.TrendPercent)
	assert.InDelta(t, 150.0, *top.TrendPercent, 1e-9)
	assert.Nil(t, result.Items[1].TrendPercent)

	paged := base
	paged.Limit = 1
	paged.Page = 2
	paged.Sort = "pageviews"
	result, err = svc.TopPages(context.Background(), "u-1", paged)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "/b", result.Items[0].PageURL)
	assert.Equal(t, 2, result.Total)
}

func TestInsightsExportCSV(t *testing.T) {
	svc := newInsightsService(serviceFacts(), nil)

	file, err := svc.Export(context.Background(), "u-1", dto.ExportQuery{WindowQuery: dto.WindowQuery{SiteID: "s-1", RangeDays: 7}, Search: "/A"})
	require.NoError(t, err)
	assert.Equal(t, "top-pages-s-1-7d.csv", file.Name)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "page_key,page_url,pageviews,revenue,rpm,trend_percent", lines[0])
	assert.Equal(t, insights.EncodePageKey("/a")+",/a,1000,5.00,5.00,150.0", lines[1])
}

func TestInsightsPageDetail(t *testing.T) {
	svc := newInsightsService(serviceFacts(), nil)
	q := dto.WindowQuery{SiteID: "s-1", RangeDays: 7}

	detail, meta, err := svc.PageDetail(context.Background(), "u-1", q, insights.EncodePageKey("/a"))
	require.NoError(t, err)
	assert.Equal(t, "/a", detail.PageURL)
	assert.Equal(t, "2025-03-04", meta.DateFrom)
	require.Len(t, detail.RevenueTrend, 7)
	assert.Equal(t, "2025-03-10", detail.RevenueTrend[6].Date)
	assert.InDelta(t, 5.0, detail.RevenueTrend[6].Value, 1e-9)
	require.Len(t, detail.PageviewsTrend, 7)
	assert.Len(t, detail.PageActions, 2)

	var users int64
	for _, c := range detail.ChannelSummary {
		users += c.Users
	}
	assert.Equal(t, int64(300), users)

	_, _, err = svc.PageDetail(context.Background(), "u-1", q, "000000000000")
	assert.ErrorIs(t, err, appErrors.ErrPageNotFound)
}

func TestInsightsActionsRecordMetrics(t *testing.T) {
	metrics := NewMetricsService()
	svc := newInsightsService(serviceFacts(), metrics)

	actions, err := svc.Actions(context.Background(), "u-1", dto.WindowQuery{SiteID: "s-1", RangeDays: 7})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(actions), insights.MinActions)
	assert.LessOrEqual(t, len(actions), insights.MaxActions)
	for i, a := range actions {
		if i > 0 {
			assert.LessOrEqual(t, actions[i-1].Priority, a.Priority)
		}
		if a.TargetPageURL != nil {
			assert.Equal(t, insights.EncodePageKey(*a.TargetPageURL), *a.TargetPageKey)
		}
	}
	assert.Greater(t, metrics.Snapshot().FactQueryCount, uint64(0))
}

func TestInsightsFactStoreFailure(t *testing.T) {
	facts := serviceFacts()
	facts.err = errors.New("connection refused")
	svc := newInsightsService(facts, nil)

	_, err := svc.Actions(context.Background(), "u-1", dto.WindowQuery{SiteID: "s-1", RangeDays: 7})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
