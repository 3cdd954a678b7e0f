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

const connectionColumns = `id, site_id, provider, property_id, property_name, access_token, refresh_token, connected_at, last_synced_at`

// ConnectionRepository persists provider connections, one per (site, provider).
type ConnectionRepository struct {
	db *sqlx.DB
}

// NewConnectionRepository creates a new instance of ConnectionRepository.
func NewConnectionRepository(db *sqlx.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Upsert creates the connection or, when the site already has one for the provider,
// replaces its property fields. The stored row is returned.
func (r *ConnectionRepository) Upsert(ctx context.Context, conn *models.Connection) (*models.Connection, error) {
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`INSERT INTO connections (id, site_id, provider, property_id, property_name, access_token, refresh_token, connected_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (site_id, provider)
DO UPDATE SET property_id = excluded.property_id, property_name = excluded.property_name`)
	if _, err := r.db.ExecContext(ctx, query, conn.ID, conn.SiteID, conn.Provider, conn.PropertyID, conn.PropertyName,
		conn.AccessToken, conn.RefreshToken, conn.ConnectedAt); err != nil {
		return nil, fmt.Errorf("upsert connection: %w", err)
	}

	stored, err := r.findBySiteProvider(ctx, conn.SiteID, conn.Provider)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// FindByID returns a connection by identifier.
func (r *ConnectionRepository) FindByID(ctx context.Context, id string) (*models.Connection, error) {
	query := r.db.Rebind(`SELECT ` + connectionColumns + ` FROM connections WHERE id = ? LIMIT 1`)
	var conn models.Connection
	if err := r.db.GetContext(ctx, &conn, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find connection: %w", err)
	}
	return &conn, nil
}

// ListBySite returns every connection of a site.
func (r *ConnectionRepository) ListBySite(ctx context.Context, siteID string) ([]models.Connection, error) {
	query := r.db.Rebind(`SELECT ` + connectionColumns + ` FROM connections WHERE site_id = ? ORDER BY connected_at`)
	var conns []models.Connection
	if err := r.db.SelectContext(ctx, &conns, query, siteID); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	return conns, nil
}

// Delete removes a connection.
func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM connections WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) findBySiteProvider(ctx context.Context, siteID string, provider models.ConnectionProvider) (*models.Connection, error) {
	query := r.db.Rebind(`SELECT ` + connectionColumns + ` FROM connections WHERE site_id = ? AND provider = ? LIMIT 1`)
	var conn models.Connection
	if err := r.db.GetContext(ctx, &conn, query, siteID, provider); err != nil {
		return nil, fmt.Errorf("reload connection: %w", err)
	}
	return &conn, nil
}
