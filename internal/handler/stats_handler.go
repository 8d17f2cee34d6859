package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/middleware"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
	"github.com/noah-isme/waste-collection-api/pkg/response"
)

type statsService interface {
	Summary(ctx context.Context, query dto.WasteRequestQuery) (*models.WasteRequestStats, bool, error)
}

// StatsHandler serves aggregate request statistics.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Summary godoc
// @Summary Aggregate counts and quantities for requests matching the filters
// @Tags Stats
// @Produce json
// @Param city query string false "City"
// @Param districtId query string false "District"
// @Param categoryId query string false "Category"
// @Param acceptanceStatus query string false "Comma separated acceptance statuses"
// @Param collectionStatus query string false "Comma separated collection statuses"
// @Param paymentStatus query string false "Comma separated payment statuses"
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	query, err := parseRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, cacheHit, err := h.service.Summary(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ResponseMeta(c))
}
