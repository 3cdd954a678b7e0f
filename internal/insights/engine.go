package insights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/pulse-api/internal/models"
)

// ErrPageNotFound is returned when a page key matches no URL of the site.
var ErrPageNotFound = errors.New("page not found")

// FactReader loads daily facts for a site over an inclusive date range. Rows carry no
// ordering guarantee.
type FactReader interface {
	TrafficFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.TrafficFact, error)
	RevenueFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.RevenueFact, error)
}

// PageIndex enumerates every URL a site has facts for in either table.
type PageIndex interface {
	PageURLs(ctx context.Context, siteID string) ([]string, error)
}

// FactStore is the read surface the engine needs.
type FactStore interface {
	FactReader
	PageIndex
}

// Engine answers insight queries from a FactStore. It keeps no state between calls.
type Engine struct {
	facts FactStore
}

// NewEngine builds an engine over facts.
func NewEngine(facts FactStore) *Engine {
	return &Engine{facts: facts}
}

// Aggregate loads and sums both fact tables for r.
func (e *Engine) Aggregate(ctx context.Context, siteID string, r DateRange) ([]PageStat, error) {
	traffic, err := e.facts.TrafficFacts(ctx, siteID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("load traffic facts: %w", err)
	}
	revenue, err := e.facts.RevenueFacts(ctx, siteID, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("load revenue facts: %w", err)
	}
	return Aggregate(traffic, revenue), nil
}

// AggregatePrevious sums revenue per page over the equal-length range before current.
func (e *Engine) AggregatePrevious(ctx context.Context, siteID string, current DateRange) (map[string]float64, error) {
	prev := current.Previous()
	revenue, err := e.facts.RevenueFacts(ctx, siteID, prev.From, prev.To)
	if err != nil {
		return nil, fmt.Errorf("load previous revenue facts: %w", err)
	}
	return RevenueByURL(revenue), nil
}

// ListPages returns one page of the ranked table for the window.
func (e *Engine) ListPages(ctx context.Context, siteID string, w Window, q PageQuery) (PageList, error) {
	stats, previous, err := e.compare(ctx, siteID, w)
	if err != nil {
		return PageList{}, err
	}
	return RankPages(stats, previous, q), nil
}

// RankedPages returns every filtered, sorted row for the window.
func (e *Engine) RankedPages(ctx context.Context, siteID string, w Window, search string, field SortField) ([]PageRow, error) {
	stats, previous, err := e.compare(ctx, siteID, w)
	if err != nil {
		return nil, err
	}
	return RankedRows(stats, previous, search, field), nil
}

// Series builds both gap-filled daily series for one page.
func (e *Engine) Series(ctx context.Context, siteID, pageURL string, r DateRange) ([]CountPoint, []AmountPoint, error) {
	traffic, err := e.facts.TrafficFacts(ctx, siteID, r.From, r.To)
	if err != nil {
		return nil, nil, fmt.Errorf("load traffic facts: %w", err)
	}
	revenue, err := e.facts.RevenueFacts(ctx, siteID, r.From, r.To)
	if err != nil {
		return nil, nil, fmt.Errorf("load revenue facts: %w", err)
	}
	return PageviewSeries(traffic, pageURL, r), RevenueSeries(revenue, pageURL, r), nil
}

// Generate produces the action list for [dateFrom, today] against the preceding rangeDays.
func (e *Engine) Generate(ctx context.Context, siteID string, dateFrom, today time.Time, rangeDays int) ([]ActionItem, error) {
	current := NewDateRange(dateFrom, today)
	stats, err := e.Aggregate(ctx, siteID, current)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return []ActionItem{}, nil
	}

	prevTo := current.From.AddDate(0, 0, -1)
	prevRange := DateRange{From: prevTo.AddDate(0, 0, -(rangeDays - 1)), To: prevTo}
	revenue, err := e.facts.RevenueFacts(ctx, siteID, prevRange.From, prevRange.To)
	if err != nil {
		return nil, fmt.Errorf("load previous revenue facts: %w", err)
	}
	return GenerateActions(stats, RevenueByURL(revenue)), nil
}

// ResolvePageKey maps a key back to a URL of the site.
func (e *Engine) ResolvePageKey(ctx context.Context, siteID, key string) (string, error) {
	urls, err := e.facts.PageURLs(ctx, siteID)
	if err != nil {
		return "", fmt.Errorf("list page urls: %w", err)
	}
	url, ok := ResolvePageKey(urls, key)
	if !ok {
		return "", ErrPageNotFound
	}
	return url, nil
}

// PageDetail builds the drill-down for the page behind key.
func (e *Engine) PageDetail(ctx context.Context, siteID, key string, w Window, src Float64Source) (*PageDetail, error) {
	url, err := e.ResolvePageKey(ctx, siteID, key)
	if err != nil {
		return nil, err
	}

	traffic, err := e.facts.TrafficFacts(ctx, siteID, w.Current.From, w.Current.To)
	if err != nil {
		return nil, fmt.Errorf("load traffic facts: %w", err)
	}
	revenue, err := e.facts.RevenueFacts(ctx, siteID, w.Current.From, w.Current.To)
	if err != nil {
		return nil, fmt.Errorf("load revenue facts: %w", err)
	}
	prevTraffic, err := e.facts.TrafficFacts(ctx, siteID, w.Previous.From, w.Previous.To)
	if err != nil {
		return nil, fmt.Errorf("load previous traffic facts: %w", err)
	}
	prevRevenue, err := e.facts.RevenueFacts(ctx, siteID, w.Previous.From, w.Previous.To)
	if err != nil {
		return nil, fmt.Errorf("load previous revenue facts: %w", err)
	}

	pageviews := PageviewSeries(traffic, url, w.Current)
	revenuePoints := RevenueSeries(revenue, url, w.Current)
	for i := range revenuePoints {
		revenuePoints[i].Value = round(revenuePoints[i].Value, 2)
	}

	var totalPageviews, totalUsers int64
	for _, p := range pageviews {
		totalPageviews += p.Value
	}
	for _, f := range traffic {
		if f.PageURL == url {
			totalUsers += f.Users
		}
	}

	var prevPageviews int64
	for _, f := range prevTraffic {
		if f.PageURL == url {
			prevPageviews += f.Pageviews
		}
	}
	prevRevenueTotal := RevenueByURL(prevRevenue)[url]

	rpm := SummarizeRPM(revenuePoints, totalPageviews, prevRevenueTotal, prevPageviews)
	return &PageDetail{
		PageKey:        key,
		URL:            url,
		RevenueTrend:   revenuePoints,
		PageviewsTrend: pageviews,
		Channels:       SplitChannels(totalUsers, src),
		RPM:            rpm,
		Actions:        PageActions(rpm.Current, totalPageviews),
	}, nil
}

// SiteKPIs totals the site's facts over r.
func (e *Engine) SiteKPIs(ctx context.Context, siteID string, r DateRange) (SiteKPIs, error) {
	traffic, err := e.facts.TrafficFacts(ctx, siteID, r.From, r.To)
	if err != nil {
		return SiteKPIs{}, fmt.Errorf("load traffic facts: %w", err)
	}
	revenue, err := e.facts.RevenueFacts(ctx, siteID, r.From, r.To)
	if err != nil {
		return SiteKPIs{}, fmt.Errorf("load revenue facts: %w", err)
	}
	return SummarizeSite(traffic, revenue), nil
}

func (e *Engine) compare(ctx context.Context, siteID string, w Window) ([]PageStat, map[string]float64, error) {
	stats, err := e.Aggregate(ctx, siteID, w.Current)
	if err != nil {
		return nil, nil, err
	}
	previous, err := e.AggregatePrevious(ctx, siteID, w.Current)
	if err != nil {
		return nil, nil, err
	}
	return stats, previous, nil
}
