package insights

import (
	"time"

	"github.com/noah-isme/pulse-api/internal/models"
)

// CountPoint is one day of an integer series.
type CountPoint struct {
	Date  time.Time
	Value int64
}

// AmountPoint is one day of a currency series.
type AmountPoint struct {
	Date  time.Time
	Value float64
}

// PageviewSeries emits one point per day of r for pageURL; days without facts are 0.
func PageviewSeries(traffic []models.TrafficFact, pageURL string, r DateRange) []CountPoint {
	byDay := make(map[string]int64)
	for _, f := range traffic {
		if f.PageURL == pageURL && r.Contains(f.Date) {
			byDay[Day(f.Date).Format(DateLayout)] += f.Pageviews
		}
	}

	points := make([]CountPoint, 0, r.Days())
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		points = append(points, CountPoint{Date: d, Value: byDay[d.Format(DateLayout)]})
	}
	return points
}

// RevenueSeries emits one point per day of r for pageURL; days without facts are 0.0.
func RevenueSeries(revenue []models.RevenueFact, pageURL string, r DateRange) []AmountPoint {
	byDay := make(map[string]float64)
	for _, f := range revenue {
		if f.PageURL == pageURL && r.Contains(f.Date) {
			byDay[Day(f.Date).Format(DateLayout)] += f.Revenue
		}
	}

	points := make([]AmountPoint, 0, r.Days())
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		points = append(points, AmountPoint{Date: d, Value: byDay[d.Format(DateLayout)]})
	}
	return points
}
