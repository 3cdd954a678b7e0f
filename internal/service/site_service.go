package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/pulse-api/internal/models"
	"github.com/noah-isme/pulse-api/internal/repository"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
)

const defaultCurrency = "USD"

var domainPattern = regexp.MustCompile(`^[a-z0-9]+([\-\.]{1}[a-z0-9]+)*\.[a-z]{2,}$`)

type siteFinder interface {
	FindForUser(ctx context.Context, id, userID string) (*models.Site, error)
}

type siteRepository interface {
	siteFinder
	Create(ctx context.Context, site *models.Site) error
	ListByUser(ctx context.Context, userID string) ([]models.Site, error)
	DomainExists(ctx context.Context, userID, domain string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// factPurger removes facts held outside the SQL store.
type factPurger interface {
	DeleteSiteFacts(ctx context.Context, siteID string) error
}

// SiteService manages the sites a user analyses.
type SiteService struct {
	repo      siteRepository
	purger    factPurger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteService constructs a SiteService. purger may be nil.
func NewSiteService(repo siteRepository, purger factPurger, validate *validator.Validate, logger *zap.Logger) *SiteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{repo: repo, purger: purger, validator: validate, logger: logger}
}

// NormalizeDomain lowercases a domain and strips scheme, www prefix and trailing slashes.
func NormalizeDomain(raw string) string {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	return strings.TrimRight(domain, "/")
}

// Create registers a site for userID.
func (s *SiteService) Create(ctx context.Context, userID string, req models.CreateSiteRequest) (*models.Site, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Currency = strings.TrimSpace(req.Currency)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid site payload")
	}
	if len(req.Name) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name must be at least 2 characters")
	}

	domain := NormalizeDomain(req.Domain)
	if !domainPattern.MatchString(domain) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid domain format")
	}

	exists, err := s.repo.DomainExists(ctx, userID, domain)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check domain")
	}
	if exists {
		return nil, appErrors.ErrDomainExists
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	site := &models.Site{UserID: userID, Name: req.Name, Domain: domain, Currency: currency}
	if err := s.repo.Create(ctx, site); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.ErrDomainExists
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create site")
	}
	s.logger.Info("site created", zap.String("site_id", site.ID), zap.String("domain", site.Domain))
	return site, nil
}

// List returns the user's sites, newest first.
func (s *SiteService) List(ctx context.Context, userID string) ([]models.Site, error) {
	sites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sites")
	}
	if sites == nil {
		sites = []models.Site{}
	}
	return sites, nil
}

// Get returns a site owned by userID.
func (s *SiteService) Get(ctx context.Context, userID, siteID string) (*models.Site, error) {
	return ownedSite(ctx, s.repo, siteID, userID)
}

// Delete removes a site with its facts, jobs and connections.
func (s *SiteService) Delete(ctx context.Context, userID, siteID string) error {
	if _, err := ownedSite(ctx, s.repo, siteID, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, siteID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete site")
	}
	if s.purger != nil {
		if err := s.purger.DeleteSiteFacts(ctx, siteID); err != nil {
			s.logger.Warn("failed to purge external facts", zap.String("site_id", siteID), zap.Error(err))
		}
	}
	s.logger.Info("site deleted", zap.String("site_id", siteID))
	return nil
}

// ownedSite loads siteID when userID owns it. Missing and foreign sites look the same.
func ownedSite(ctx context.Context, repo siteFinder, siteID, userID string) (*models.Site, error) {
	if strings.TrimSpace(siteID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "site_id is required")
	}
	site, err := repo.FindForUser(ctx, siteID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSiteNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}
	return site, nil
}
