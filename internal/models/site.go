package models

import "time"

// Site is a property owned by a user whose facts are analysed.
type Site struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Name      string     `db:"name" json:"name"`
	Domain    string     `db:"domain" json:"domain"`
	Currency  string     `db:"currency" json:"currency"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CreateSiteRequest is the payload for registering a site.
type CreateSiteRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Domain   string `json:"domain" validate:"required,min=3,max=255"`
	Currency string `json:"currency" validate:"omitempty,len=3,uppercase,alpha"`
}
