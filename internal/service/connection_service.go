package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
)

// Placeholder credentials stored until provider OAuth exists.
const (
	mockAccessToken  = "mock_access_token"
	mockRefreshToken = "mock_refresh_token"
)

var ga4Catalogue = []models.GA4PropertyOption{
	{PropertyID: "properties/123456789", PropertyName: "GA4-123456789", DisplayName: "My Blog (GA4)"},
	{PropertyID: "properties/987654321", PropertyName: "GA4-987654321", DisplayName: "Tech Site (GA4)"},
	{PropertyID: "properties/456789123", PropertyName: "GA4-456789123", DisplayName: "News Portal (GA4)"},
}

var adSenseCatalogue = []models.AdSenseAccountOption{
	{AccountID: "pub-1234567890123456", AccountName: "AdSense-Primary", DisplayName: "Primary AdSense Account"},
	{AccountID: "pub-6543210987654321", AccountName: "AdSense-Secondary", DisplayName: "Secondary AdSense Account"},
}

type connectionRepository interface {
	Upsert(ctx context.Context, conn *models.Connection) (*models.Connection, error)
	FindByID(ctx context.Context, id string) (*models.Connection, error)
	ListBySite(ctx context.Context, siteID string) ([]models.Connection, error)
	Delete(ctx context.Context, id string) error
}

// ConnectionService links sites to analytics and ad providers.
type ConnectionService struct {
	repo      connectionRepository
	sites     siteFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConnectionService constructs a ConnectionService.
func NewConnectionService(repo connectionRepository, sites siteFinder, validate *validator.Validate, logger *zap.Logger) *ConnectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{repo: repo, sites: sites, validator: validate, logger: logger}
}

// GA4Properties lists the selectable GA4 properties.
func (s *ConnectionService) GA4Properties() []models.GA4PropertyOption {
	out := make([]models.GA4PropertyOption, len(ga4Catalogue))
	copy(out, ga4Catalogue)
	return out
}

// AdSenseAccounts lists the selectable AdSense accounts.
func (s *ConnectionService) AdSenseAccounts() []models.AdSenseAccountOption {
	out := make([]models.AdSenseAccountOption, len(adSenseCatalogue))
	copy(out, adSenseCatalogue)
	return out
}

// Upsert creates the site's connection for a provider or replaces its property.
func (s *ConnectionService) Upsert(ctx context.Context, userID string, req models.UpsertConnectionRequest) (*models.Connection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid connection payload")
	}
	if _, err := ownedSite(ctx, s.sites, req.SiteID, userID); err != nil {
		return nil, err
	}

	conn, err := s.repo.Upsert(ctx, &models.Connection{
		SiteID:       req.SiteID,
		Provider:     req.Provider,
		PropertyID:   req.PropertyID,
		PropertyName: req.PropertyName,
		AccessToken:  mockAccessToken,
		RefreshToken: mockRefreshToken,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save connection")
	}
	s.logger.Info("connection saved", zap.String("site_id", conn.SiteID), zap.String("provider", string(conn.Provider)))
	return conn, nil
}

// List returns the connections of a site owned by userID.
func (s *ConnectionService) List(ctx context.Context, userID, siteID string) ([]models.Connection, error) {
	if _, err := ownedSite(ctx, s.sites, siteID, userID); err != nil {
		return nil, err
	}
	conns, err := s.repo.ListBySite(ctx, siteID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list connections")
	}
	if conns == nil {
		conns = []models.Connection{}
	}
	return conns, nil
}

// Delete removes a connection. A connection of someone else's site is forbidden, not hidden.
func (s *ConnectionService) Delete(ctx context.Context, userID, connectionID string) error {
	conn, err := s.repo.FindByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrConnectionNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load connection")
	}

	if _, err := s.sites.FindForUser(ctx, conn.SiteID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrAccessDenied, "you don't have access to this connection")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}

	if err := s.repo.Delete(ctx, connectionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete connection")
	}
	return nil
}
