package insights

import "fmt"

// RPMSummary compares a page's RPM with the previous window.
type RPMSummary struct {
	Current       float64
	Previous      *float64
	ChangePercent *float64
}

// PageAction is a page-scoped suggestion shown on the detail view.
type PageAction struct {
	ActionID string
	Title    string
	Reason   string
}

// PageDetail is the drill-down for one page.
type PageDetail struct {
	PageKey        string
	URL            string
	RevenueTrend   []AmountPoint
	PageviewsTrend []CountPoint
	Channels       []ChannelShare
	RPM            RPMSummary
	Actions        []PageAction
}

// SummarizeRPM computes current RPM from the cent-rounded revenue series and the
// previous window's RPM from raw sums.
func SummarizeRPM(revenuePoints []AmountPoint, pageviews int64, prevRevenue float64, prevPageviews int64) RPMSummary {
	var revenue float64
	for _, p := range revenuePoints {
		revenue += p.Value
	}

	summary := RPMSummary{Current: RPM(revenue, pageviews)}
	if prevPageviews > 0 {
		prev := RPM(prevRevenue, prevPageviews)
		summary.Previous = &prev
		if prev > 0 {
			change := round((summary.Current-prev)/prev*100, 1)
			summary.ChangePercent = &change
		}
	}
	return summary
}

// PageActions picks one monetisation and one content suggestion for a page.
func PageActions(rpm float64, pageviews int64) []PageAction {
	actions := make([]PageAction, 0, 2)

	switch {
	case rpm > 8 && pageviews < 500:
		actions = append(actions, PageAction{
			ActionID: "promote_high_rpm",
			Title:    "Promote this page on homepage",
			Reason:   fmt.Sprintf("High RPM ($%.2f) but low traffic (%d views). Featuring it on the main page could increase revenue.", rpm, pageviews),
		})
	case rpm < 4:
		actions = append(actions, PageAction{
			ActionID: "optimize_ads",
			Title:    "Optimize ad placement",
			Reason:   fmt.Sprintf("RPM is low ($%.2f). Review ad positions and consider adding in-content ads to improve monetization.", rpm),
		})
	default:
		actions = append(actions, PageAction{
			ActionID: "maintain_performance",
			Title:    "Maintain content freshness",
			Reason:   fmt.Sprintf("This page has solid RPM ($%.2f). Keep content updated to maintain search ranking.", rpm),
		})
	}

	if pageviews > 1000 {
		actions = append(actions, PageAction{
			ActionID: "create_related",
			Title:    "Create related content",
			Reason:   fmt.Sprintf("Strong traffic (%d views). Write follow-up articles to capture related search queries.", pageviews),
		})
	} else {
		actions = append(actions, PageAction{
			ActionID: "improve_seo",
			Title:    "Improve SEO for this page",
			Reason:   fmt.Sprintf("Traffic is moderate (%d views). Review title/meta description and add internal links.", pageviews),
		})
	}
	return actions
}
