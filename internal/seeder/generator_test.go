package seeder

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urlPattern = regexp.MustCompile(`^/[a-z]+/[a-z0-9-]+-[a-z0-9-]+-\d{1,3}$`)

func TestGenerateShape(t *testing.T) {
	today := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	batch := New(rand.New(rand.NewSource(7))).Generate("site-1", today, 14, 25)

	assert.Equal(t, time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC), batch.From)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), batch.To)
	require.Len(t, batch.Traffic, 14*25)
	require.Len(t, batch.Revenue, 14*25)

	urls := map[string]bool{}
	for _, f := range batch.Traffic {
		urls[f.PageURL] = true
		assert.Regexp(t, urlPattern, f.PageURL)
		assert.GreaterOrEqual(t, f.Pageviews, int64(1))
		assert.GreaterOrEqual(t, f.Users, int64(1))
		assert.LessOrEqual(t, f.Users, f.Pageviews)
		assert.GreaterOrEqual(t, f.Sessions, f.Users)
		assert.GreaterOrEqual(t, f.BounceRate, 0.25)
		assert.LessOrEqual(t, f.BounceRate, 0.8)
		assert.False(t, f.Date.Before(batch.From) || f.Date.After(batch.To))
	}
	assert.Len(t, urls, 25)

	for _, f := range batch.Revenue {
		assert.GreaterOrEqual(t, f.Impressions, int64(1))
		assert.GreaterOrEqual(t, f.RPM, 1.0)
		assert.LessOrEqual(t, f.RPM, 12.0)
		assert.InDelta(t, float64(f.Impressions)*f.RPM/1000, f.Revenue, 0.0001)
		assert.LessOrEqual(t, f.Clicks, f.Impressions)
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	a := New(rand.New(rand.NewSource(99))).Generate("s", today, 3, 20)
	b := New(rand.New(rand.NewSource(99))).Generate("s", today, 3, 20)

	assert.Equal(t, a, b)
}

func TestSummary(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	batch := New(rand.New(rand.NewSource(1))).Generate("site-9", today, 30, 20)

	summary := Summary(batch, 20)

	assert.Equal(t, "site-9", summary.SiteID)
	assert.Equal(t, "2025-02-09 ~ 2025-03-10", summary.DateRange)
	assert.Equal(t, 20, summary.PageURLsGenerated)
	assert.Equal(t, 600, summary.PageMetricRows)
	assert.Equal(t, 600, summary.RevenueMetricRows)
}
