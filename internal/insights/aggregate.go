package insights

import (
	"sort"

	"github.com/noah-isme/pulse-api/internal/models"
)

// PageStat is a page's summed metrics over one window.
type PageStat struct {
	URL       string
	Pageviews int64
	Users     int64
	Revenue   float64
	RPM       float64
}

// Cohort holds the site-wide baselines rules compare pages against.
type Cohort struct {
	AvgRPM       float64
	AvgPageviews float64
}

// RPM is revenue per thousand pageviews rounded to cents; zero without pageviews.
func RPM(revenue float64, pageviews int64) float64 {
	if pageviews <= 0 {
		return 0
	}
	return round(revenue/float64(pageviews)*1000, 2)
}

// Aggregate sums traffic and revenue facts per page. The page universe is the union of
// URLs from both inputs; a side with no rows contributes zero. Duplicate fact rows are
// summed. Output is ordered by URL ascending.
func Aggregate(traffic []models.TrafficFact, revenue []models.RevenueFact) []PageStat {
	byURL := make(map[string]*PageStat)
	get := func(url string) *PageStat {
		stat, ok := byURL[url]
		if !ok {
			stat = &PageStat{URL: url}
			byURL[url] = stat
		}
		return stat
	}

	for _, f := range traffic {
		stat := get(f.PageURL)
		stat.Pageviews += f.Pageviews
		stat.Users += f.Users
	}
	for _, f := range revenue {
		get(f.PageURL).Revenue += f.Revenue
	}

	stats := make([]PageStat, 0, len(byURL))
	for _, stat := range byURL {
		stat.RPM = RPM(stat.Revenue, stat.Pageviews)
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].URL < stats[j].URL })
	return stats
}

// RevenueByURL sums revenue per page.
func RevenueByURL(revenue []models.RevenueFact) map[string]float64 {
	out := make(map[string]float64)
	for _, f := range revenue {
		out[f.PageURL] += f.Revenue
	}
	return out
}

// CohortOf averages RPM and pageviews across pages. Zero-RPM pages count like any other.
func CohortOf(stats []PageStat) Cohort {
	if len(stats) == 0 {
		return Cohort{}
	}
	var rpmSum, pvSum float64
	for _, s := range stats {
		rpmSum += s.RPM
		pvSum += float64(s.Pageviews)
	}
	n := float64(len(stats))
	return Cohort{AvgRPM: rpmSum / n, AvgPageviews: pvSum / n}
}
