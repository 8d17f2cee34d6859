package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/middleware"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
	"github.com/noah-isme/waste-collection-api/pkg/response"
)

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

// actorFromContext writes a 401 and reports false when no verified caller is present.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return false
	}
	return true
}

// parseRequestQuery reads the listing filters shared by list, stats and export.
// Status filters accept repeated parameters and comma separated lists.
func parseRequestQuery(c *gin.Context) (dto.WasteRequestQuery, error) {
	query := dto.WasteRequestQuery{
		UserID:           strings.TrimSpace(c.Query("userId")),
		DriverID:         strings.TrimSpace(c.Query("driverId")),
		City:             strings.TrimSpace(c.Query("city")),
		DistrictID:       strings.TrimSpace(c.Query("districtId")),
		CategoryID:       strings.TrimSpace(c.Query("categoryId")),
		AcceptanceStatus: queryList(c, "acceptanceStatus"),
		DriverStatus:     queryList(c, "driverStatus"),
		CollectionStatus: queryList(c, "collectionStatus"),
		PaymentStatus:    queryList(c, "paymentStatus"),
	}

	var err error
	if query.Page, err = queryInt(c, "page"); err != nil {
		return query, err
	}
	if query.PageSize, err = queryInt(c, "page_size"); err != nil {
		return query, err
	}
	return query, nil
}

func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a non-negative integer")
	}
	return value, nil
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a boolean")
	}
	return &value, nil
}
