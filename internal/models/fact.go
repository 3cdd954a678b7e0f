package models

import "time"

// TrafficFact is one row of page_daily_metrics.
type TrafficFact struct {
	SiteID             string    `db:"site_id" json:"site_id"`
	Date               time.Time `db:"date" json:"date"`
	PageURL            string    `db:"page_url" json:"page_url"`
	Users              int64     `db:"users" json:"users"`
	Pageviews          int64     `db:"pageviews" json:"pageviews"`
	Sessions           int64     `db:"sessions" json:"sessions"`
	AvgSessionDuration float64   `db:"avg_session_duration" json:"avg_session_duration"`
	BounceRate         float64   `db:"bounce_rate" json:"bounce_rate"`
}

// RevenueFact is one row of revenue_daily_metrics.
type RevenueFact struct {
	SiteID      string    `db:"site_id" json:"site_id"`
	Date        time.Time `db:"date" json:"date"`
	PageURL     string    `db:"page_url" json:"page_url"`
	Revenue     float64   `db:"revenue" json:"revenue"`
	Impressions int64     `db:"impressions" json:"impressions"`
	Clicks      int64     `db:"clicks" json:"clicks"`
	CTR         float64   `db:"ctr" json:"ctr"`
	RPM         float64   `db:"rpm" json:"rpm"`
}

// FactBatch is a full replacement of a site's facts over [From, To].
type FactBatch struct {
	SiteID  string
	From    time.Time
	To      time.Time
	Traffic []TrafficFact
	Revenue []RevenueFact
}
