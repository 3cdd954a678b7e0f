package service

import (
	"context"
	"time"

	"github.com/noah-isme/pulse-api/internal/insights"
	"github.com/noah-isme/pulse-api/internal/models"
)

// instrumentedFacts times every fact store read.
type instrumentedFacts struct {
	next    insights.FactStore
	metrics *MetricsService
}

func newInstrumentedFacts(next insights.FactStore, metrics *MetricsService) insights.FactStore {
	if metrics == nil {
		return next
	}
	return &instrumentedFacts{next: next, metrics: metrics}
}

func (f *instrumentedFacts) TrafficFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.TrafficFact, error) {
	defer f.observe("traffic", time.Now())
	return f.next.TrafficFacts(ctx, siteID, from, to)
}

func (f *instrumentedFacts) RevenueFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.RevenueFact, error) {
	defer f.observe("revenue", time.Now())
	return f.next.RevenueFacts(ctx, siteID, from, to)
}

func (f *instrumentedFacts) PageURLs(ctx context.Context, siteID string) ([]string, error) {
	defer f.observe("page_urls", time.Now())
	return f.next.PageURLs(ctx, siteID)
}

func (f *instrumentedFacts) observe(label string, started time.Time) {
	f.metrics.ObserveFactQuery(label, time.Since(started))
}
