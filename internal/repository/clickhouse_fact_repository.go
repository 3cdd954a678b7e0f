package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/noah-isme/pulse-api/internal/models"
)

type clickHouseConn interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Exec(ctx context.Context, query string, args ...any) error
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
}

// ClickHouseFactRepository serves the fact tables from ClickHouse.
type ClickHouseFactRepository struct {
	conn clickHouseConn
}

// NewClickHouseFactRepository wraps an open ClickHouse connection.
func NewClickHouseFactRepository(conn driver.Conn) *ClickHouseFactRepository {
	return &ClickHouseFactRepository{conn: conn}
}

func (r *ClickHouseFactRepository) TrafficFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.TrafficFact, error) {
	const query = `SELECT site_id, date, page_url, users, pageviews, sessions, avg_session_duration, bounce_rate
FROM page_daily_metrics WHERE site_id = ? AND date >= toDate(?) AND date <= toDate(?)`
	rows, err := r.conn.Query(ctx, query, siteID, from.Format(factDateLayout), to.Format(factDateLayout))
	if err != nil {
		return nil, fmt.Errorf("query clickhouse traffic facts: %w", err)
	}
	defer rows.Close()

	var facts []models.TrafficFact
	for rows.Next() {
		var f models.TrafficFact
		if err := rows.Scan(&f.SiteID, &f.Date, &f.PageURL, &f.Users, &f.Pageviews, &f.Sessions, &f.AvgSessionDuration, &f.BounceRate); err != nil {
			return nil, fmt.Errorf("scan clickhouse traffic fact: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clickhouse traffic facts: %w", err)
	}
	return facts, nil
}

func (r *ClickHouseFactRepository) RevenueFacts(ctx context.Context, siteID string, from, to time.Time) ([]models.RevenueFact, error) {
	const query = `SELECT site_id, date, page_url, revenue, impressions, clicks, ctr, rpm
FROM revenue_daily_metrics WHERE site_id = ? AND date >= toDate(?) AND date <= toDate(?)`
	rows, err := r.conn.Query(ctx, query, siteID, from.Format(factDateLayout), to.Format(factDateLayout))
	if err != nil {
		return nil, fmt.Errorf("query clickhouse revenue facts: %w", err)
	}
	defer rows.Close()

	var facts []models.RevenueFact
	for rows.Next() {
		var f models.RevenueFact
		if err := rows.Scan(&f.SiteID, &f.Date, &f.PageURL, &f.Revenue, &f.Impressions, &f.Clicks, &f.CTR, &f.RPM); err != nil {
			return nil, fmt.Errorf("scan clickhouse revenue fact: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clickhouse revenue facts: %w", err)
	}
	return facts, nil
}

func (r *ClickHouseFactRepository) PageURLs(ctx context.Context, siteID string) ([]string, error) {
	const query = `SELECT DISTINCT page_url FROM (
SELECT page_url FROM page_daily_metrics WHERE site_id = ?
UNION ALL SELECT page_url FROM revenue_daily_metrics WHERE site_id = ?)`
	rows, err := r.conn.Query(ctx, query, siteID, siteID)
	if err != nil {
		return nil, fmt.Errorf("query clickhouse page urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan clickhouse page url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clickhouse page urls: %w", err)
	}
	return urls, nil
}

// ReplaceFacts runs synchronous delete mutations for the range, then appends the batch.
// ClickHouse has no multi-statement transactions; a failed insert leaves the range empty
// until the next sync.
func (r *ClickHouseFactRepository) ReplaceFacts(ctx context.Context, batch models.FactBatch) error {
	from, to := batch.From.Format(factDateLayout), batch.To.Format(factDateLayout)
	mutationCtx := clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{"mutations_sync": 2}))
	for _, table := range []string{"page_daily_metrics", "revenue_daily_metrics"} {
		query := fmt.Sprintf("ALTER TABLE %s DELETE WHERE site_id = ? AND date >= toDate(?) AND date <= toDate(?)", table)
		if err := r.conn.Exec(mutationCtx, query, batch.SiteID, from, to); err != nil {
			return fmt.Errorf("delete clickhouse %s: %w", table, err)
		}
	}

	traffic, err := r.conn.PrepareBatch(ctx, "INSERT INTO page_daily_metrics")
	if err != nil {
		return fmt.Errorf("prepare clickhouse traffic batch: %w", err)
	}
	for _, f := range batch.Traffic {
		if err := traffic.Append(batch.SiteID, f.Date, f.PageURL, f.Users, f.Pageviews, f.Sessions, f.AvgSessionDuration, f.BounceRate); err != nil {
			_ = traffic.Abort()
			return fmt.Errorf("append clickhouse traffic fact: %w", err)
		}
	}
	if err := traffic.Send(); err != nil {
		return fmt.Errorf("send clickhouse traffic batch: %w", err)
	}

	revenue, err := r.conn.PrepareBatch(ctx, "INSERT INTO revenue_daily_metrics")
	if err != nil {
		return fmt.Errorf("prepare clickhouse revenue batch: %w", err)
	}
	for _, f := range batch.Revenue {
		if err := revenue.Append(batch.SiteID, f.Date, f.PageURL, f.Revenue, f.Impressions, f.Clicks, f.CTR, f.RPM); err != nil {
			_ = revenue.Abort()
			return fmt.Errorf("append clickhouse revenue fact: %w", err)
		}
	}
	if err := revenue.Send(); err != nil {
		return fmt.Errorf("send clickhouse revenue batch: %w", err)
	}
	return nil
}

// DeleteSiteFacts removes every fact row of a site.
func (r *ClickHouseFactRepository) DeleteSiteFacts(ctx context.Context, siteID string) error {
	mutationCtx := clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{"mutations_sync": 2}))
	for _, table := range []string{"page_daily_metrics", "revenue_daily_metrics"} {
		if err := r.conn.Exec(mutationCtx, fmt.Sprintf("ALTER TABLE %s DELETE WHERE site_id = ?", table), siteID); err != nil {
			return fmt.Errorf("delete clickhouse %s for site: %w", table, err)
		}
	}
	return nil
}
