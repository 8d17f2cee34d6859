package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/pkg/response"
)

type categoryService interface {
	List(ctx context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error)
	Get(ctx context.Context, id string) (*models.WasteCategory, error)
	Create(ctx context.Context, payload dto.CategoryRequest) (*models.WasteCategory, error)
	Update(ctx context.Context, id string, payload dto.CategoryRequest) (*models.WasteCategory, error)
}

type districtService interface {
	List(ctx context.Context, filter models.DistrictFilter) ([]models.District, error)
	Get(ctx context.Context, id string) (*models.District, error)
	Create(ctx context.Context, payload dto.DistrictRequest) (*models.District, error)
	Update(ctx context.Context, id string, payload dto.DistrictRequest) (*models.District, error)
}

type driverService interface {
	List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error)
	Get(ctx context.Context, actor models.Actor, id string) (*models.Driver, error)
	Create(ctx context.Context, payload dto.DriverRequest) (*models.Driver, error)
	Update(ctx context.Context, id string, payload dto.DriverRequest) (*models.Driver, error)
	Requests(ctx context.Context, actor models.Actor, id string, query dto.WasteRequestQuery) ([]models.WasteRequest, *models.Pagination, error)
}

// CategoryHandler manages waste categories.
type CategoryHandler struct {
	service categoryService
}

// NewCategoryHandler constructs the handler.
func NewCategoryHandler(service categoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// List godoc
// @Summary List waste categories
// @Tags Categories
// @Produce json
// @Param active query bool false "Only active categories"
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), models.CategoryFilter{Active: active})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a waste category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Create godoc
// @Summary Create a waste category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body dto.CategoryRequest true "Category"
// @Success 201 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var payload dto.CategoryRequest
	if !bindJSON(c, &payload) {
		return
	}
	category, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update godoc
// @Summary Replace a waste category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body dto.CategoryRequest true "Category"
// @Success 200 {object} response.Envelope
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	var payload dto.CategoryRequest
	if !bindJSON(c, &payload) {
		return
	}
	category, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// DistrictHandler manages service districts.
type DistrictHandler struct {
	service districtService
}

// NewDistrictHandler constructs the handler.
func NewDistrictHandler(service districtService) *DistrictHandler {
	return &DistrictHandler{service: service}
}

// List godoc
// @Summary List districts
// @Tags Districts
// @Produce json
// @Param active query bool false "Only active districts"
// @Param city query string false "Districts serving this city"
// @Success 200 {object} response.Envelope
// @Router /districts [get]
func (h *DistrictHandler) List(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.DistrictFilter{Active: active, City: strings.TrimSpace(c.Query("city"))}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a district
// @Tags Districts
// @Produce json
// @Param id path string true "District ID"
// @Success 200 {object} response.Envelope
// @Router /districts/{id} [get]
func (h *DistrictHandler) Get(c *gin.Context) {
	district, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, district, nil)
}

// Create godoc
// @Summary Create a district
// @Tags Districts
// @Accept json
// @Produce json
// @Param payload body dto.DistrictRequest true "District"
// @Success 201 {object} response.Envelope
// @Router /districts [post]
func (h *DistrictHandler) Create(c *gin.Context) {
	var payload dto.DistrictRequest
	if !bindJSON(c, &payload) {
		return
	}
	district, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, district)
}

// Update godoc
// @Summary Replace a district
// @Tags Districts
// @Accept json
// @Produce json
// @Param id path string true "District ID"
// @Param payload body dto.DistrictRequest true "District"
// @Success 200 {object} response.Envelope
// @Router /districts/{id} [put]
func (h *DistrictHandler) Update(c *gin.Context) {
	var payload dto.DistrictRequest
	if !bindJSON(c, &payload) {
		return
	}
	district, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, district, nil)
}

// DriverHandler manages driver profiles.
type DriverHandler struct {
	service driverService
}

// NewDriverHandler constructs the handler.
func NewDriverHandler(service driverService) *DriverHandler {
	return &DriverHandler{service: service}
}

// List godoc
// @Summary List drivers
// @Tags Drivers
// @Produce json
// @Param city query string false "City"
// @Param districtId query string false "District"
// @Param active query bool false "Active flag"
// @Success 200 {object} response.Envelope
// @Router /drivers [get]
func (h *DriverHandler) List(c *gin.Context) {
	active, err := queryBool(c, "active")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.DriverFilter{
		City:       strings.TrimSpace(c.Query("city")),
		DistrictID: strings.TrimSpace(c.Query("districtId")),
		Active:     active,
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a driver profile
// @Tags Drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id} [get]
func (h *DriverHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	driver, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, driver, nil)
}

// Create godoc
// @Summary Register a driver profile
// @Tags Drivers
// @Accept json
// @Produce json
// @Param payload body dto.DriverRequest true "Driver"
// @Success 201 {object} response.Envelope
// @Router /drivers [post]
func (h *DriverHandler) Create(c *gin.Context) {
	var payload dto.DriverRequest
	if !bindJSON(c, &payload) {
		return
	}
	driver, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, driver)
}

// Update godoc
// @Summary Replace a driver profile
// @Tags Drivers
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param payload body dto.DriverRequest true "Driver"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id} [put]
func (h *DriverHandler) Update(c *gin.Context) {
	var payload dto.DriverRequest
	if !bindJSON(c, &payload) {
		return
	}
	driver, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, driver, nil)
}

// Requests godoc
// @Summary Requests bound to a driver
// @Tags Drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Param driverStatus query string false "Comma separated driver statuses"
// @Param collectionStatus query string false "Comma separated collection statuses"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /drivers/{id}/requests [get]
func (h *DriverHandler) Requests(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	query, err := parseRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.Requests(c.Request.Context(), actor, c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}
