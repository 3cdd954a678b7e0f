package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/insights"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
	"github.com/noah-isme/pulse-api/pkg/export"
)

type lastSyncReader interface {
	LastCompletedAt(ctx context.Context, siteID string) (*time.Time, error)
}

// InsightsService serves dashboard reads for sites the caller owns.
type InsightsService struct {
	engine   *insights.Engine
	sites    siteFinder
	syncs    lastSyncReader
	channels insights.Float64Source
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewInsightsService wires the engine over facts. channels seeds the placeholder channel split.
func NewInsightsService(facts insights.FactStore, sites siteFinder, syncs lastSyncReader, channels insights.Float64Source, metrics *MetricsService, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if channels == nil {
		channels = insights.NewLockedSource(time.Now().UnixNano())
	}
	return &InsightsService{
		engine:   insights.NewEngine(newInstrumentedFacts(facts, metrics)),
		sites:    sites,
		syncs:    syncs,
		channels: channels,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// HomeKPIs totals the site's facts over the trailing window.
func (s *InsightsService) HomeKPIs(ctx context.Context, userID string, q dto.WindowQuery) (*dto.HomeKPIs, dto.WindowMeta, error) {
	w, err := s.window(ctx, userID, q)
	if err != nil {
		return nil, dto.WindowMeta{}, err
	}

	kpis, err := s.engine.SiteKPIs(ctx, q.SiteID, w.Current)
	if err != nil {
		return nil, dto.WindowMeta{}, s.internal(err, "failed to compute kpis")
	}
	lastSynced, err := s.syncs.LastCompletedAt(ctx, q.SiteID)
	if err != nil {
		return nil, dto.WindowMeta{}, s.internal(err, "failed to load last sync")
	}

	return &dto.HomeKPIs{
		Users:        kpis.Users,
		Pageviews:    kpis.Pageviews,
		Revenue:      kpis.Revenue,
		RPM:          kpis.RPM,
		CTR:          kpis.CTR,
		LastSyncedAt: lastSynced,
	}, windowMeta(q.SiteID, w), nil
}

// TopPages returns one page of the ranked page table.
func (s *InsightsService) TopPages(ctx context.Context, userID string, q dto.TopPagesQuery) (*dto.TopPagesResult, error) {
	if !insights.ValidRange(q.RangeDays) {
		return nil, appErrors.ErrInvalidRange
	}
	field, ok := insights.ParseSortField(q.Sort)
	if !ok {
		return nil, appErrors.ErrInvalidSort
	}
	if q.Page < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "page must be at least 1")
	}
	if q.Limit < 1 || q.Limit > insights.MaxLimit {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("limit must be between 1 and %d", insights.MaxLimit))
	}

	w, err := s.window(ctx, userID, q.WindowQuery)
	if err != nil {
		return nil, err
	}

	list, err := s.engine.ListPages(ctx, q.SiteID, w, insights.PageQuery{Search: q.Search, Sort: field, Page: q.Page, Limit: q.Limit})
	if err != nil {
		return nil, s.internal(err, "failed to rank pages")
	}

	q.Sort = string(field)
	return &dto.TopPagesResult{Items: toTopPageItems(list.Items), Total: list.Total, Query: q}, nil
}

// Export renders the whole filtered, sorted page table.
func (s *InsightsService) Export(ctx context.Context, userID string, q dto.ExportQuery) (*export.File, error) {
	if !insights.ValidRange(q.RangeDays) {
		return nil, appErrors.ErrInvalidRange
	}
	field, ok := insights.ParseSortField(q.Sort)
	if !ok {
		return nil, appErrors.ErrInvalidSort
	}
	format, err := export.ParseFormat(q.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	w, err := s.window(ctx, userID, q.WindowQuery)
	if err != nil {
		return nil, err
	}

	rows, err := s.engine.RankedPages(ctx, q.SiteID, w, q.Search, field)
	if err != nil {
		return nil, s.internal(err, "failed to rank pages")
	}

	title := fmt.Sprintf("Top pages by %s, %s to %s", field, w.Current.From.Format(insights.DateLayout), w.Current.To.Format(insights.DateLayout))
	file, err := export.Render(format, pageDataset(rows), title, fmt.Sprintf("top-pages-%s-%dd", q.SiteID, w.Days))
	if err != nil {
		return nil, s.internal(err, "failed to render export")
	}
	s.logger.Info("top pages exported", zap.String("site_id", q.SiteID), zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return file, nil
}

// PageDetail builds the drill-down for the page behind pageKey.
func (s *InsightsService) PageDetail(ctx context.Context, userID string, q dto.WindowQuery, pageKey string) (*dto.PageDetail, dto.WindowMeta, error) {
	w, err := s.window(ctx, userID, q)
	if err != nil {
		return nil, dto.WindowMeta{}, err
	}

	detail, err := s.engine.PageDetail(ctx, q.SiteID, pageKey, w, s.channels)
	if err != nil {
		if errors.Is(err, insights.ErrPageNotFound) {
			return nil, dto.WindowMeta{}, appErrors.ErrPageNotFound
		}
		return nil, dto.WindowMeta{}, s.internal(err, "failed to build page detail")
	}
	return toPageDetail(detail), windowMeta(q.SiteID, w), nil
}

// Actions returns the recommended actions for the trailing window.
func (s *InsightsService) Actions(ctx context.Context, userID string, q dto.WindowQuery) ([]dto.ActionItem, error) {
	w, err := s.window(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	actions, err := s.engine.Generate(ctx, q.SiteID, w.Current.From, w.Current.To, w.Days)
	if err != nil {
		return nil, s.internal(err, "failed to generate actions")
	}
	s.metrics.ObserveActions(len(actions))
	return toActionItems(actions), nil
}

// window validates the range, checks ownership and anchors the window on today.
func (s *InsightsService) window(ctx context.Context, userID string, q dto.WindowQuery) (insights.Window, error) {
	if !insights.ValidRange(q.RangeDays) {
		return insights.Window{}, appErrors.ErrInvalidRange
	}
	if _, err := ownedSite(ctx, s.sites, q.SiteID, userID); err != nil {
		return insights.Window{}, err
	}
	return insights.NewWindow(s.now().UTC(), q.RangeDays), nil
}

func (s *InsightsService) internal(err error, message string) error {
	s.logger.Error(message, zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func windowMeta(siteID string, w insights.Window) dto.WindowMeta {
	return dto.WindowMeta{
		SiteID:    siteID,
		RangeDays: w.Days,
		DateFrom:  w.Current.From.Format(insights.DateLayout),
		DateTo:    w.Current.To.Format(insights.DateLayout),
	}
}

func toTopPageItems(rows []insights.PageRow) []dto.TopPageItem {
	items := make([]dto.TopPageItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.TopPageItem{
			PageKey:      r.PageKey,
			PageURL:      r.URL,
			Pageviews:    r.Pageviews,
			Revenue:      r.Revenue,
			RPM:          r.RPM,
			TrendPercent: r.TrendPercent,
		})
	}
	return items
}

var pageExportHeaders = []string{"page_key", "page_url", "pageviews", "revenue", "rpm", "trend_percent"}

func pageDataset(rows []insights.PageRow) export.Dataset {
	data := export.Dataset{
		Headers: pageExportHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
		Numeric: map[string]bool{"pageviews": true, "revenue": true, "rpm": true, "trend_percent": true},
	}
	for _, r := range rows {
		trend := ""
		if r.TrendPercent != nil {
			trend = strconv.FormatFloat(*r.TrendPercent, 'f', 1, 64)
		}
		data.Rows = append(data.Rows, map[string]string{
			"page_key":      r.PageKey,
			"page_url":      r.URL,
			"pageviews":     strconv.FormatInt(r.Pageviews, 10),
			"revenue":       strconv.FormatFloat(r.Revenue, 'f', 2, 64),
			"rpm":           strconv.FormatFloat(r.RPM, 'f', 2, 64),
			"trend_percent": trend,
		})
	}
	return data
}

func toPageDetail(d *insights.PageDetail) *dto.PageDetail {
	out := &dto.PageDetail{
		PageKey:        d.PageKey,
		PageURL:        d.URL,
		RevenueTrend:   make([]dto.RevenuePoint, 0, len(d.RevenueTrend)),
		PageviewsTrend: make([]dto.PageviewPoint, 0, len(d.PageviewsTrend)),
		ChannelSummary: make([]dto.ChannelItem, 0, len(d.Channels)),
		RPMSummary: dto.RPMSummary{
			Current:       d.RPM.Current,
			Previous:      d.RPM.Previous,
			ChangePercent: d.RPM.ChangePercent,
		},
		PageActions: make([]dto.PageAction, 0, len(d.Actions)),
	}
	for _, p := range d.RevenueTrend {
		out.RevenueTrend = append(out.RevenueTrend, dto.RevenuePoint{Date: p.Date.Format(insights.DateLayout), Value: p.Value})
	}
	for _, p := range d.PageviewsTrend {
		out.PageviewsTrend = append(out.PageviewsTrend, dto.PageviewPoint{Date: p.Date.Format(insights.DateLayout), Value: p.Value})
	}
	for _, c := range d.Channels {
		out.ChannelSummary = append(out.ChannelSummary, dto.ChannelItem{Channel: c.Channel, Users: c.Users, Percent: c.Percent})
	}
	for _, a := range d.Actions {
		out.PageActions = append(out.PageActions, dto.PageAction{ActionID: a.ActionID, Title: a.Title, Reason: a.Reason})
	}
	return out
}

func toActionItems(actions []insights.ActionItem) []dto.ActionItem {
	items := make([]dto.ActionItem, 0, len(actions))
	for _, a := range actions {
		item := dto.ActionItem{ActionID: a.ActionID, Title: a.Title, Reason: a.Reason, Priority: a.Priority}
		if a.TargetURL != "" {
			key, url := a.TargetKey, a.TargetURL
			item.TargetPageKey = &key
			item.TargetPageURL = &url
		}
		items = append(items, item)
	}
	return items
}
