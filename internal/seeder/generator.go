// Package seeder produces synthetic traffic and revenue facts for development sites.
package seeder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/pulse-api/internal/models"
)

const dateLayout = "2006-01-02"

var categories = []string{
	"tech", "finance", "health", "travel", "food",
	"lifestyle", "education", "entertainment", "sports", "business",
}

var slugWords = []string{
	"guide", "tips", "review", "best", "how-to",
	"top-10", "ultimate", "complete", "beginners", "advanced",
	"2025", "2024", "tutorial", "comparison", "checklist",
	"strategy", "mistakes", "secrets", "tools", "resources",
}

// Source is the subset of *rand.Rand the generator draws from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Generator builds fact batches. A Generator is not safe for concurrent use.
type Generator struct {
	rnd Source
}

// New wraps a random source, typically rand.New(rand.NewSource(seed)).
func New(rnd Source) *Generator {
	return &Generator{rnd: rnd}
}

// Generate creates pageCount pages with one traffic and one revenue row per page per day
// over the trailing days ending today.
func (g *Generator) Generate(siteID string, today time.Time, days, pageCount int) models.FactBatch {
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -(days - 1))

	urls := g.pageURLs(pageCount)
	scale := g.uniform(0.6, 1.8)

	batch := models.FactBatch{
		SiteID:  siteID,
		From:    from,
		To:      to,
		Traffic: make([]models.TrafficFact, 0, days*len(urls)),
		Revenue: make([]models.RevenueFact, 0, days*len(urls)),
	}
	for offset := 0; offset < days; offset++ {
		day := from.AddDate(0, 0, offset)
		g.appendDay(&batch, urls, day, scale)
	}
	return batch
}

// Summary describes a generated batch.
func Summary(batch models.FactBatch, pages int) models.SyncSummary {
	return models.SyncSummary{
		SiteID:            batch.SiteID,
		DateRange:         fmt.Sprintf("%s ~ %s", batch.From.Format(dateLayout), batch.To.Format(dateLayout)),
		PageURLsGenerated: pages,
		PageMetricRows:    len(batch.Traffic),
		RevenueMetricRows: len(batch.Revenue),
	}
}

func (g *Generator) pageURLs(count int) []string {
	urls := make([]string, 0, count)
	used := make(map[string]struct{}, count)
	for len(urls) < count {
		url := fmt.Sprintf("/%s/%s-%s-%d",
			g.choice(categories), g.choice(slugWords), g.choice(slugWords), g.randint(1, 999))
		if _, ok := used[url]; ok {
			continue
		}
		used[url] = struct{}{}
		urls = append(urls, url)
	}
	return urls
}

func (g *Generator) appendDay(batch *models.FactBatch, urls []string, day time.Time, scale float64) {
	weekend := 1.0
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		weekend = 0.65
	}

	for _, url := range urls {
		base := float64(g.randint(20, 800))
		pageviews := max64(1, int64(base*scale*weekend*g.uniform(0.7, 1.3)))
		users := max64(1, int64(float64(pageviews)*g.uniform(0.5, 0.85)))
		sessions := max64(users, int64(float64(users)*g.uniform(1.0, 1.4)))

		batch.Traffic = append(batch.Traffic, models.TrafficFact{
			SiteID:             batch.SiteID,
			Date:               day,
			PageURL:            url,
			Users:              users,
			Pageviews:          pageviews,
			Sessions:           sessions,
			AvgSessionDuration: round(g.uniform(30, 300), 1),
			BounceRate:         round(g.uniform(0.25, 0.80), 4),
		})

		impressions := max64(1, int64(float64(pageviews)*g.uniform(0.8, 1.5)))
		rpm := round(g.uniform(1.0, 12.0), 2)
		clicks := max64(0, int64(float64(impressions)*g.uniform(0.005, 0.04)))

		batch.Revenue = append(batch.Revenue, models.RevenueFact{
			SiteID:      batch.SiteID,
			Date:        day,
			PageURL:     url,
			Revenue:     round(float64(impressions)*rpm/1000, 4),
			Impressions: impressions,
			Clicks:      clicks,
			CTR:         round(float64(clicks)/float64(impressions), 4),
			RPM:         rpm,
		})
	}
}

func (g *Generator) choice(words []string) string {
	return words[g.rnd.Intn(len(words))]
}

// randint is inclusive on both ends.
func (g *Generator) randint(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rnd.Float64()
}

// round rounds the exact decimal value of x half-to-even at the given decimals.
func round(x float64, places int) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
