package insights

import "github.com/noah-isme/pulse-api/internal/models"

// SiteKPIs are the headline numbers for a site over one range.
type SiteKPIs struct {
	Users     int64
	Pageviews int64
	Revenue   float64
	RPM       float64
	CTR       *float64
}

// SummarizeSite totals facts for the home dashboard. Users are not additive across days,
// so the figure is the busiest day's user count.
func SummarizeSite(traffic []models.TrafficFact, revenue []models.RevenueFact) SiteKPIs {
	var kpis SiteKPIs

	dailyUsers := make(map[string]int64)
	for _, f := range traffic {
		kpis.Pageviews += f.Pageviews
		dailyUsers[Day(f.Date).Format(DateLayout)] += f.Users
	}
	for _, users := range dailyUsers {
		if users > kpis.Users {
			kpis.Users = users
		}
	}

	var totalRevenue float64
	var impressions, clicks int64
	for _, f := range revenue {
		totalRevenue += f.Revenue
		impressions += f.Impressions
		clicks += f.Clicks
	}

	kpis.Revenue = round(totalRevenue, 2)
	kpis.RPM = RPM(totalRevenue, kpis.Pageviews)
	if impressions > 0 {
		ctr := round(float64(clicks)/float64(impressions), 4)
		kpis.CTR = &ctr
	}
	return kpis
}
