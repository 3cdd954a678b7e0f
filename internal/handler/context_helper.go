package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pulse-api/internal/dto"
	"github.com/noah-isme/pulse-api/internal/middleware"
	"github.com/noah-isme/pulse-api/internal/models"
	appErrors "github.com/noah-isme/pulse-api/pkg/errors"
)

const defaultRangeDays = 7

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID returns the authenticated user's id from the token subject.
func currentUserID(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Subject == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "not authenticated")
	}
	return claims.Subject, nil
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be an integer")
	}
	return value, nil
}

// windowQuery reads site_id and range, defaulting range to 7 days.
func windowQuery(c *gin.Context) (dto.WindowQuery, error) {
	siteID := strings.TrimSpace(c.Query("site_id"))
	if siteID == "" {
		return dto.WindowQuery{}, appErrors.Clone(appErrors.ErrValidation, "site_id is required")
	}
	days, err := queryInt(c, "range", defaultRangeDays)
	if err != nil {
		return dto.WindowQuery{}, err
	}
	return dto.WindowQuery{SiteID: siteID, RangeDays: days}, nil
}

func windowMetaMap(meta dto.WindowMeta) map[string]interface{} {
	return map[string]interface{}{
		"site_id":    meta.SiteID,
		"range_days": meta.RangeDays,
		"date_from":  meta.DateFrom,
		"date_to":    meta.DateTo,
	}
}
