package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/middleware"
	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/internal/service"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

type requestServiceMock struct {
	created    dto.CreateWasteRequest
	lastActor  models.Actor
	lastQuery  dto.WasteRequestQuery
	lastID     string
	decision   dto.DecisionRequest
	collection dto.CollectionUpdateRequest
	updated    dto.UpdateWasteRequest
	err        error
}

func (m *requestServiceMock) result(actor models.Actor, id string) (*models.WasteRequest, error) {
	m.lastActor, m.lastID = actor, id
	if m.err != nil {
		return nil, m.err
	}
	return &models.WasteRequest{ID: id, UserID: actor.UserID}, nil
}

func (m *requestServiceMock) Create(_ context.Context, actor models.Actor, payload dto.CreateWasteRequest) (*models.WasteRequest, error) {
	m.created = payload
	return m.result(actor, "req-new")
}

func (m *requestServiceMock) Update(_ context.Context, actor models.Actor, id string, payload dto.UpdateWasteRequest) (*models.WasteRequest, error) {
	m.updated = payload
	return m.result(actor, id)
}

func (m *requestServiceMock) Delete(_ context.Context, actor models.Actor, id string) error {
	_, err := m.result(actor, id)
	return err
}

func (m *requestServiceMock) Detail(_ context.Context, actor models.Actor, id string) (*models.WasteRequestDetail, error) {
	req, err := m.result(actor, id)
	if err != nil {
		return nil, err
	}
	return &models.WasteRequestDetail{WasteRequest: *req}, nil
}

func (m *requestServiceMock) List(_ context.Context, actor models.Actor, query dto.WasteRequestQuery) ([]models.WasteRequest, *models.Pagination, error) {
	m.lastActor, m.lastQuery = actor, query
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.WasteRequest{{ID: "req-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (m *requestServiceMock) Decide(_ context.Context, actor models.Actor, id string, payload dto.DecisionRequest) (*models.WasteRequest, error) {
	m.decision = payload
	return m.result(actor, id)
}

func (m *requestServiceMock) DriverDecide(_ context.Context, actor models.Actor, id string, payload dto.DecisionRequest) (*models.WasteRequest, error) {
	m.decision = payload
	return m.result(actor, id)
}

func (m *requestServiceMock) AdvanceCollection(_ context.Context, actor models.Actor, id string, payload dto.CollectionUpdateRequest) (*models.WasteRequest, error) {
	m.collection = payload
	return m.result(actor, id)
}

func (m *requestServiceMock) Confirm(_ context.Context, actor models.Actor, id string) (*models.WasteRequest, error) {
	return m.result(actor, id)
}

type assignmentServiceMock struct {
	requestID string
	driverID  string
	err       error
}

func (m *assignmentServiceMock) Assign(_ context.Context, requestID, driverID string) (*models.WasteRequest, error) {
	m.requestID, m.driverID = requestID, driverID
	if m.err != nil {
		return nil, m.err
	}
	return &models.WasteRequest{ID: requestID, DriverID: &driverID}, nil
}

func (m *assignmentServiceMock) Candidates(context.Context, string) ([]models.DriverLoad, error) {
	return []models.DriverLoad{{Driver: models.Driver{ID: "drv-1"}, PendingCount: 3}}, nil
}

type paymentServiceMock struct {
	settled dto.SettlePaymentRequest
}

func (m *paymentServiceMock) Resolve(_ context.Context, id string) (*models.WasteRequest, error) {
	return &models.WasteRequest{ID: id}, nil
}

func (m *paymentServiceMock) Settle(_ context.Context, id string, payload dto.SettlePaymentRequest) (*models.WasteRequest, error) {
	m.settled = payload
	return &models.WasteRequest{ID: id}, nil
}

type feedbackServiceMock struct {
	payload dto.FeedbackRequest
}

func (m *feedbackServiceMock) Record(_ context.Context, _ models.Actor, id string, payload dto.FeedbackRequest) (*models.WasteRequest, error) {
	m.payload = payload
	if payload.Rating < 1 || payload.Rating > 5 {
		return nil, appErrors.ErrInvalidRating
	}
	return &models.WasteRequest{ID: id, Rating: &payload.Rating}, nil
}

type reportServiceMock struct {
	format string
	query  dto.WasteRequestQuery
}

func (m *reportServiceMock) RequestReport(_ context.Context, _ models.Actor, id, format string) (*service.Document, error) {
	m.format = format
	return &service.Document{Filename: "request_" + id + ".csv", ContentType: "text/csv", Data: []byte("Field,Value\n")}, nil
}

func (m *reportServiceMock) Export(_ context.Context, _ models.Actor, query dto.WasteRequestQuery, format string) (*service.Document, error) {
	m.query, m.format = query, format
	return &service.Document{Filename: "requests.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}, nil
}

type statsServiceMock struct {
	query dto.WasteRequestQuery
}

func (m *statsServiceMock) Summary(_ context.Context, query dto.WasteRequestQuery) (*models.WasteRequestStats, bool, error) {
	m.query = query
	return &models.WasteRequestStats{Total: 4}, true, nil
}

type routerFixture struct {
	router      *gin.Engine
	requests    *requestServiceMock
	assignments *assignmentServiceMock
	payments    *paymentServiceMock
	feedback    *feedbackServiceMock
	reports     *reportServiceMock
	stats       *statsServiceMock
}

// testAuth trusts X-Test-Role and X-Test-User instead of a bearer token.
func testAuth(c *gin.Context) {
	if role := c.GetHeader("X-Test-Role"); role != "" {
		user := c.GetHeader("X-Test-User")
		if user == "" {
			user = "test-user"
		}
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: user, Role: models.UserRole(role)})
	}
	c.Next()
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		router:      gin.New(),
		requests:    &requestServiceMock{},
		assignments: &assignmentServiceMock{},
		payments:    &paymentServiceMock{},
		feedback:    &feedbackServiceMock{},
		reports:     &reportServiceMock{},
		stats:       &statsServiceMock{},
	}
	f.router.Use(middleware.WithResponseMeta())
	RegisterRoutes(f.router.Group("/api/v1"), Handlers{
		Requests:   NewWasteRequestHandler(f.requests, f.assignments, f.payments, f.feedback, f.reports),
		Stats:      NewStatsHandler(f.stats),
		Categories: NewCategoryHandler(&categoryServiceMock{}),
		Districts:  NewDistrictHandler(&districtServiceMock{}),
		Drivers:    NewDriverHandler(&driverServiceMock{}),
	}, testAuth)
	return f
}

func (f *routerFixture) do(method, path, role, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestRequestRoutesEnforceRoles(t *testing.T) {
	f := newRouterFixture()
	cases := []struct {
		method string
		path   string
		role   models.UserRole
		body   string
		want   int
	}{
		{http.MethodPost, "/requests", "", `{}`, http.StatusUnauthorized},
		{http.MethodPost, "/requests", models.RoleDriver, `{}`, http.StatusForbidden},
		{http.MethodPost, "/requests/req-1/decision", models.RoleUser, `{"decision":"ACCEPTED"}`, http.StatusForbidden},
		{http.MethodPost, "/requests/req-1/assignment", models.RoleDriver, `{"driverId":"drv-1"}`, http.StatusForbidden},
		{http.MethodPost, "/requests/req-1/driver-decision", models.RoleUser, `{"decision":"ACCEPTED"}`, http.StatusForbidden},
		{http.MethodPost, "/requests/req-1/payment/settle", models.RoleUser, `{"status":"COMPLETED"}`, http.StatusForbidden},
		{http.MethodGet, "/requests/export", models.RoleUser, "", http.StatusForbidden},
		{http.MethodGet, "/stats", models.RoleDriver, "", http.StatusForbidden},
		{http.MethodPost, "/categories", models.RoleUser, `{}`, http.StatusForbidden},
		{http.MethodGet, "/drivers", models.RoleDriver, "", http.StatusForbidden},
		{http.MethodGet, "/categories", models.RoleDriver, "", http.StatusOK},
		{http.MethodPost, "/requests/req-1/collection", models.RoleDriver, `{"status":"PROCESSING"}`, http.StatusOK},
	}

	for _, tc := range cases {
		rec := f.do(tc.method, tc.path, string(tc.role), tc.body)
		assert.Equal(t, tc.want, rec.Code, "%s %s as %q", tc.method, tc.path, tc.role)
	}
}

func TestCreateRequestPassesActorAndPayload(t *testing.T) {
	f := newRouterFixture()
	body := `{"districtId":"dst-1","city":"Bandung","address":"Jl. Braga","categoryId":"cat-plastic","quantity":12.5,"pickupDate":"2024-03-14"}`

	rec := f.do(http.MethodPost, "/requests", string(models.RoleUser), body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "test-user", f.requests.lastActor.UserID)
	assert.Equal(t, models.RoleUser, f.requests.lastActor.Role)
	assert.Equal(t, 12.5, f.requests.created.Quantity)
	assert.Equal(t, "2024-03-14", f.requests.created.PickupDate)
}

func TestCreateRequestRejectsMalformedBody(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(http.MethodPost, "/requests", string(models.RoleUser), `{"quantity":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.requests.lastActor.UserID)
}

func TestListRequestsParsesFilters(t *testing.T) {
	f := newRouterFixture()
	path := "/requests?city=Bandung&acceptanceStatus=PENDING,%20ACCEPTED&collectionStatus=PROCESSING&collectionStatus=COMPLETED&page=2&page_size=5"

	rec := f.do(http.MethodGet, path, string(models.RoleAdmin), "")
	require.Equal(t, http.StatusOK, rec.Code)

	q := f.requests.lastQuery
	assert.Equal(t, "Bandung", q.City)
	assert.Equal(t, []string{"PENDING", "ACCEPTED"}, q.AcceptanceStatus)
	assert.Equal(t, []string{"PROCESSING", "COMPLETED"}, q.CollectionStatus)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 5, q.PageSize)

	envelope := decodeEnvelope(t, rec)
	pagination := envelope["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total_count"])
}

func TestListRequestsRejectsBadPaging(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(http.MethodGet, "/requests?page=-1", string(models.RoleUser), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	f := newRouterFixture()
	f.requests.err = appErrors.Clone(appErrors.ErrImmutableField, "request can no longer be edited")

	rec := f.do(http.MethodPut, "/requests/req-1", string(models.RoleUser), `{"address":"Jl. Dago"}`)
	assert.Equal(t, appErrors.ErrImmutableField.Status, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errBody := envelope["error"].(map[string]interface{})
	assert.Equal(t, appErrors.ErrImmutableField.Code, errBody["code"])
}

func TestUpdateForwardsImmutableKeys(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPut, "/requests/req-1", string(models.RoleUser), `{"address":"Jl. Dago","paymentStatus":"COMPLETED","acceptanceStatus":"ACCEPTED"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.requests.updated.Address)
	assert.Equal(t, "Jl. Dago", *f.requests.updated.Address)
	assert.Equal(t, []string{"acceptanceStatus", "paymentStatus"}, f.requests.updated.Immutable)
}

func TestDeleteRequestReturnsNoContent(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(http.MethodDelete, "/requests/req-9", string(models.RoleUser), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "req-9", f.requests.lastID)
}

func TestAssignPassesDriver(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(http.MethodPost, "/requests/req-1/assignment", string(models.RoleAdmin), `{"driverId":"drv-2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", f.assignments.requestID)
	assert.Equal(t, "drv-2", f.assignments.driverID)
}

func TestAssignSurfacesCapacity(t *testing.T) {
	f := newRouterFixture()
	f.assignments.err = appErrors.ErrDriverAtCapacity
	rec := f.do(http.MethodPost, "/requests/req-1/assignment", string(models.RoleAdmin), `{"driverId":"drv-2"}`)
	assert.Equal(t, appErrors.ErrDriverAtCapacity.Status, rec.Code)
}

func TestFeedbackAndSettlementPayloads(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/requests/req-1/feedback", string(models.RoleUser), `{"rating":6}`)
	assert.Equal(t, appErrors.ErrInvalidRating.Status, rec.Code)

	rec = f.do(http.MethodPost, "/requests/req-1/feedback", string(models.RoleUser), `{"rating":4,"comment":"on time"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "on time", f.feedback.payload.Comment)

	rec = f.do(http.MethodPost, "/requests/req-1/payment/settle", string(models.RoleAdmin), `{"status":"COMPLETED"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "COMPLETED", f.payments.settled.Status)
}

func TestReportDownloads(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/requests/req-1/report?format=csv", string(models.RoleUser), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", f.reports.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="request_req-1.csv"`)

	rec = f.do(http.MethodGet, "/requests/export?format=pdf&paymentStatus=PENDING", string(models.RoleAdmin), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"PENDING"}, f.reports.query.PaymentStatus)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestStatsReportsCacheHit(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(http.MethodGet, "/stats?city=Bandung", string(models.RoleAdmin), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bandung", f.stats.query.City)

	envelope := decodeEnvelope(t, rec)
	meta := envelope["meta"].(map[string]interface{})
	assert.Equal(t, true, meta["cache_hit"])
}

func TestHandlerWithoutClaimsIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWasteRequestHandler(&requestServiceMock{}, nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests/req-1/confirm", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	handler.Confirm(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
