package dto

import "time"

// WindowQuery selects a site and trailing range.
type WindowQuery struct {
	SiteID    string
	RangeDays int
}

// TopPagesQuery captures the top pages table parameters.
type TopPagesQuery struct {
	WindowQuery
	Search string
	Sort   string
	Page   int
	Limit  int
}

// ExportQuery captures the export parameters; the whole filtered table is rendered.
type ExportQuery struct {
	WindowQuery
	Search string
	Sort   string
	Format string
}

// WindowMeta echoes the resolved window back to clients.
type WindowMeta struct {
	SiteID    string `json:"site_id"`
	RangeDays int    `json:"range_days"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
}

// HomeKPIs is the home dashboard payload.
type HomeKPIs struct {
	Users        int64      `json:"users"`
	Pageviews    int64      `json:"pageviews"`
	Revenue      float64    `json:"revenue"`
	RPM          float64    `json:"rpm"`
	CTR          *float64   `json:"ctr"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
}

// TopPageItem is one row of the top pages table.
type TopPageItem struct {
	PageKey      string   `json:"page_key"`
	PageURL      string   `json:"page_url"`
	Pageviews    int64    `json:"pageviews"`
	Revenue      float64  `json:"revenue"`
	RPM          float64  `json:"rpm"`
	TrendPercent *float64 `json:"trend_percent"`
}

// TopPagesResult is a page of rows with the filtered total.
type TopPagesResult struct {
	Items []TopPageItem
	Total int
	Query TopPagesQuery
}

// RevenuePoint is one day of a page's revenue trend.
type RevenuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// PageviewPoint is one day of a page's pageview trend.
type PageviewPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

type ChannelItem struct {
	Channel string  `json:"channel"`
	Users   int64   `json:"users"`
	Percent float64 `json:"percent"`
}

type RPMSummary struct {
	Current       float64  `json:"current"`
	Previous      *float64 `json:"previous"`
	ChangePercent *float64 `json:"change_percent"`
}

type PageAction struct {
	ActionID string `json:"action_id"`
	Title    string `json:"title"`
	Reason   string `json:"reason"`
}

// PageDetail is the page drill-down payload.
type PageDetail struct {
	PageKey        string          `json:"page_key"`
	PageURL        string          `json:"page_url"`
	RevenueTrend   []RevenuePoint  `json:"revenue_trend"`
	PageviewsTrend []PageviewPoint `json:"pageviews_trend"`
	ChannelSummary []ChannelItem   `json:"channel_summary"`
	RPMSummary     RPMSummary      `json:"rpm_summary"`
	PageActions    []PageAction    `json:"page_actions"`
}

// ActionItem is a recommended action; target fields are null for site-wide suggestions.
type ActionItem struct {
	ActionID      string  `json:"action_id"`
	Title         string  `json:"title"`
	Reason        string  `json:"reason"`
	TargetPageKey *string `json:"target_page_key"`
	TargetPageURL *string `json:"target_page_url"`
	Priority      int     `json:"priority"`
}
