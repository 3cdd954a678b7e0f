package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/pulse-api/internal/models"
)

const siteColumns = `id, user_id, name, domain, currency, created_at, updated_at`

// SiteRepository persists sites and owns their cascade deletion.
type SiteRepository struct {
	db *sqlx.DB
}

// NewSiteRepository creates a new instance of SiteRepository.
func NewSiteRepository(db *sqlx.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// Create inserts a site.
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	if site.CreatedAt.IsZero() {
		site.CreatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO sites (id, user_id, name, domain, currency, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, site.ID, site.UserID, site.Name, site.Domain, site.Currency, site.CreatedAt); err != nil {
		return wrapInsert("create site", err)
	}
	return nil
}

// FindForUser returns the site only when userID owns it.
func (r *SiteRepository) FindForUser(ctx context.Context, id, userID string) (*models.Site, error) {
	query := r.db.Rebind(`SELECT ` + siteColumns + ` FROM sites WHERE id = ? AND user_id = ? LIMIT 1`)
	var site models.Site
	if err := r.db.GetContext(ctx, &site, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find site: %w", err)
	}
	return &site, nil
}

// ListByUser returns the user's sites, newest first.
func (r *SiteRepository) ListByUser(ctx context.Context, userID string) ([]models.Site, error) {
	query := r.db.Rebind(`SELECT ` + siteColumns + ` FROM sites WHERE user_id = ? ORDER BY created_at DESC`)
	var sites []models.Site
	if err := r.db.SelectContext(ctx, &sites, query, userID); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

// DomainExists reports whether the user already registered domain.
func (r *SiteRepository) DomainExists(ctx context.Context, userID, domain string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM sites WHERE user_id = ? AND domain = ?`)
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, domain); err != nil {
		return false, fmt.Errorf("check site domain: %w", err)
	}
	return count > 0, nil
}

// Delete removes a site and everything recorded for it in one transaction.
func (r *SiteRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete site tx: %w", err)
	}
	for _, table := range []string{"sync_jobs", "revenue_daily_metrics", "page_daily_metrics", "connections"} {
		query := tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE site_id = ?", table))
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete %s for site: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sites WHERE id = ?`), id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete site: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete site tx: %w", err)
	}
	return nil
}
