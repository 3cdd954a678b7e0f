package models

import "time"

// ConnectionProvider names an upstream data source.
type ConnectionProvider string

const (
	ProviderGA4     ConnectionProvider = "ga4"
	ProviderAdSense ConnectionProvider = "adsense"
)

// Connection links a site to a GA4 property or AdSense account. Tokens are placeholders
// until real provider integration exists and are never serialised.
type Connection struct {
	ID           string             `db:"id" json:"id"`
	SiteID       string             `db:"site_id" json:"site_id"`
	Provider     ConnectionProvider `db:"provider" json:"provider"`
	PropertyID   *string            `db:"property_id" json:"property_id"`
	PropertyName *string            `db:"property_name" json:"property_name"`
	AccessToken  string             `db:"access_token" json:"-"`
	RefreshToken string             `db:"refresh_token" json:"-"`
	ConnectedAt  time.Time          `db:"connected_at" json:"connected_at"`
	LastSyncedAt *time.Time         `db:"last_synced_at" json:"last_synced_at"`
}

// UpsertConnectionRequest creates or replaces the connection for (site, provider).
type UpsertConnectionRequest struct {
	SiteID       string             `json:"site_id" validate:"required"`
	Provider     ConnectionProvider `json:"provider" validate:"required,oneof=ga4 adsense"`
	PropertyID   *string            `json:"property_id"`
	PropertyName *string            `json:"property_name"`
}

// GA4PropertyOption is a selectable GA4 property.
type GA4PropertyOption struct {
	PropertyID   string `json:"property_id"`
	PropertyName string `json:"property_name"`
	DisplayName  string `json:"display_name"`
}

// AdSenseAccountOption is a selectable AdSense account.
type AdSenseAccountOption struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	DisplayName string `json:"display_name"`
}
