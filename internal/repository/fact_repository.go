package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pulse-api/internal/models"
)

const factDateLayout = "2006-01-02"

// FactRepository reads and replaces daily page facts in the SQL store.
type FactRepository struct {
	db *sqlx.DB
}

// NewFactRepository creates a new instance of FactRepository.
func NewFactRepository(db *sqlx.DB) *FactRepository {
	return &FactRepository{db: db}
}

// TrafficFacts returns page_daily_metrics rows for a site within [from, to].
func (r *FactRepository) TrafficFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.TrafficFact, error) {
	query := r.db.Rebind(`SELECT site_id, date, page_url, users, pageviews, sessions, avg_session_duration, bounce_rate
FROM page_daily_metrics WHERE site_id = ? AND date >= ? AND date <= ?`)
	var facts []models.TrafficFact
	if err := r.db.SelectContext(ctx, &facts, query, siteID, from.Format(factDateLayout), to.Format(factDateLayout)); err != nil {
		return nil, fmt.Errorf("select traffic facts: %w", err)
	}
	return facts, nil
}

// RevenueFacts returns revenue_daily_metrics rows for a site within [from, to].
func (r *FactRepository) RevenueFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.RevenueFact, error) {
	query := r.db.Rebind(`SELECT site_id, date, page_url, revenue, impressions, clicks, ctr, rpm
FROM revenue_daily_metrics WHERE site_id = ? AND date >= ? AND date <= ?`)
	var facts []models.RevenueFact
	if err := r.db.SelectContext(ctx, &facts, query, siteID, from.Format(factDateLayout), to.Format(factDateLayout)); err != nil {
		return nil, fmt.Errorf("select revenue facts: %w", err)
	}
	return facts, nil
}

// PageURLs lists every URL the site has facts for in either table.
func (r *FactRepository) PageURLs(ctx context.Context, siteID string) ([]string, error) {
	query := r.db.Rebind(`SELECT page_url FROM page_daily_metrics WHERE site_id = ?
UNION SELECT page_url FROM revenue_daily_metrics WHERE site_id = ?`)
	var urls []string
	if err := r.db.SelectContext(ctx, &urls, query, siteID, siteID); err != nil {
		return nil, fmt.Errorf("select page urls: %w", err)
	}
	return urls, nil
}

// ReplaceFacts deletes the site's facts inside the batch range and inserts the batch in one transaction.
func (r *FactRepository) ReplaceFacts(ctx context.Context, batch models.FactBatch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace facts tx: %w", err)
	}
	if err := r.replace(ctx, tx, batch); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace facts tx: %w", err)
	}
	return nil
}

func (r *FactRepository) replace(ctx context.Context, tx *sqlx.Tx, batch models.FactBatch) error {
	from, to := batch.From.Format(factDateLayout), batch.To.Format(factDateLayout)

	for _, table := range []string{"page_daily_metrics", "revenue_daily_metrics"} {
		query := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE site_id = ? AND date >= ? AND date <= ?", table))
		if _, err := tx.ExecContext(ctx, query, batch.SiteID, from, to); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	trafficStmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO page_daily_metrics
(site_id, date, page_url, users, pageviews, sessions, avg_session_duration, bounce_rate) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare traffic insert: %w", err)
	}
	defer trafficStmt.Close()
	for _, f := range batch.Traffic {
		if _, err := trafficStmt.ExecContext(ctx, batch.SiteID, f.Date.Format(factDateLayout), f.PageURL,
			f.Users, f.Pageviews, f.Sessions, f.AvgSessionDuration, f.BounceRate); err != nil {
			return fmt.Errorf("insert traffic fact: %w", err)
		}
	}

	revenueStmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO revenue_daily_metrics
(site_id, date, page_url, revenue, impressions, clicks, ctr, rpm) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare revenue insert: %w", err)
	}
	defer revenueStmt.Close()
	for _, f := range batch.Revenue {
		if _, err := revenueStmt.ExecContext(ctx, batch.SiteID, f.Date.Format(factDateLayout), f.PageURL,
			f.Revenue, f.Impressions, f.Clicks, f.CTR, f.RPM); err != nil {
			return fmt.Errorf("insert revenue fact: %w", err)
		}
	}
	return nil
}
