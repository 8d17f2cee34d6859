package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

type categoryServiceMock struct {
	filter  models.CategoryFilter
	payload dto.CategoryRequest
}

func (m *categoryServiceMock) List(_ context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error) {
	m.filter = filter
	return []models.WasteCategory{{ID: "cat-1", Name: "Plastic"}}, nil
}

func (m *categoryServiceMock) Get(_ context.Context, id string) (*models.WasteCategory, error) {
	if id == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return &models.WasteCategory{ID: id}, nil
}

func (m *categoryServiceMock) Create(_ context.Context, payload dto.CategoryRequest) (*models.WasteCategory, error) {
	m.payload = payload
	return &models.WasteCategory{ID: "cat-new", Name: payload.Name}, nil
}

func (m *categoryServiceMock) Update(_ context.Context, id string, payload dto.CategoryRequest) (*models.WasteCategory, error) {
	m.payload = payload
	return &models.WasteCategory{ID: id, Name: payload.Name}, nil
}

type districtServiceMock struct {
	filter models.DistrictFilter
}

func (m *districtServiceMock) List(_ context.Context, filter models.DistrictFilter) ([]models.District, error) {
	m.filter = filter
	return nil, nil
}

func (m *districtServiceMock) Get(_ context.Context, id string) (*models.District, error) {
	return &models.District{ID: id}, nil
}

func (m *districtServiceMock) Create(_ context.Context, payload dto.DistrictRequest) (*models.District, error) {
	return &models.District{ID: "dst-new", Name: payload.Name, Cities: payload.Cities}, nil
}

func (m *districtServiceMock) Update(_ context.Context, id string, payload dto.DistrictRequest) (*models.District, error) {
	return &models.District{ID: id, Name: payload.Name}, nil
}

type driverServiceMock struct {
	actor models.Actor
	query dto.WasteRequestQuery
}

func (m *driverServiceMock) List(context.Context, models.DriverFilter) ([]models.Driver, error) {
	return nil, nil
}

func (m *driverServiceMock) Get(_ context.Context, actor models.Actor, id string) (*models.Driver, error) {
	m.actor = actor
	if !actor.IsAdmin() && actor.UserID != "driver-user" {
		return nil, appErrors.ErrForbidden
	}
	return &models.Driver{ID: id, UserID: "driver-user"}, nil
}

func (m *driverServiceMock) Create(_ context.Context, payload dto.DriverRequest) (*models.Driver, error) {
	return &models.Driver{ID: "drv-new", UserID: payload.UserID}, nil
}

func (m *driverServiceMock) Update(_ context.Context, id string, payload dto.DriverRequest) (*models.Driver, error) {
	return &models.Driver{ID: id, UserID: payload.UserID}, nil
}

func (m *driverServiceMock) Requests(_ context.Context, actor models.Actor, _ string, query dto.WasteRequestQuery) ([]models.WasteRequest, *models.Pagination, error) {
	m.actor, m.query = actor, query
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func TestCategoryHandlerListParsesActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &categoryServiceMock{}
	handler := NewCategoryHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/categories?active=true", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Active)
	assert.True(t, *svc.filter.Active)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/categories?active=maybe", nil)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCategoryHandler(&categoryServiceMock{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/categories/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMasterDataWritesAsAdmin(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/categories", string(models.RoleAdmin), `{"name":"Glass","pricePerKg":12.5,"isUserPaymentRequired":true}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/districts", string(models.RoleAdmin), `{"name":"Bandung Raya","cities":["Bandung","Cimahi"]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/districts?city=Cimahi", string(models.RoleUser), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDriverSelfAccess(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drivers/drv-1", nil)
	req.Header.Set("X-Test-Role", string(models.RoleDriver))
	req.Header.Set("X-Test-User", "driver-user")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/drivers/drv-1/requests?collectionStatus=PENDING", nil)
	req.Header.Set("X-Test-Role", string(models.RoleDriver))
	req.Header.Set("X-Test-User", "someone-else")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/drivers/drv-1", string(models.RoleDriver), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReadinessReportsFailingCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterOps(r, NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
