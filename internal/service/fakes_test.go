package service

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/internal/repository"
)

// memoryRequests mimics the conditional writes of WasteRequestRepository. Every
// method holds one mutex, so AssignDriver is as atomic as the database transaction.
type memoryRequests struct {
	mu       sync.Mutex
	items    map[string]*models.WasteRequest
	payments map[string]*models.Payment

	assignCalls int
	assignDelay time.Duration
	getErr      error
}

func newMemoryRequests() *memoryRequests {
	return &memoryRequests{items: map[string]*models.WasteRequest{}, payments: map[string]*models.Payment{}}
}

func (m *memoryRequests) Create(ctx context.Context, req *models.WasteRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Version = 1
	req.UpdatedAt = req.CreatedAt
	m.items[req.ID] = req.Clone()
	return nil
}

func (m *memoryRequests) GetByID(ctx context.Context, id string) (*models.WasteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	stored, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored.Clone(), nil
}

func (m *memoryRequests) List(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, int, error) {
	all, _ := m.ListAll(ctx, filter)
	page, size := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (m *memoryRequests) ListAll(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.WasteRequest, 0, len(m.items))
	for _, req := range m.items {
		if matchesFilter(req, filter) {
			out = append(out, *req.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryRequests) UpdateState(ctx context.Context, req *models.WasteRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.storeLocked(req)
}

func (m *memoryRequests) storeLocked(req *models.WasteRequest) error {
	stored, ok := m.items[req.ID]
	if !ok || stored.Version != req.Version {
		return sql.ErrNoRows
	}
	req.Version++
	m.items[req.ID] = req.Clone()
	return nil
}

func (m *memoryRequests) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[id]
	if !ok || stored.AcceptanceStatus != models.AcceptancePending {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRequests) AssignDriver(ctx context.Context, params repository.AssignDriverParams) error {
	time.Sleep(m.assignDelay)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignCalls++

	if m.pendingLocked(params.DriverID) >= params.Capacity {
		return repository.ErrCapacityReached
	}
	stored, ok := m.items[params.RequestID]
	if !ok || stored.Version != params.ExpectedVersion ||
		stored.AcceptanceStatus != models.AcceptanceAccepted || stored.DriverStatus != models.DriverUnassigned {
		return sql.ErrNoRows
	}
	driverID := params.DriverID
	stored.DriverID = &driverID
	stored.DriverStatus = models.DriverPending
	stored.UpdatedAt = params.At
	stored.Version++
	return nil
}

func (m *memoryRequests) pendingLocked(driverID string) int {
	count := 0
	for _, req := range m.items {
		if req.DriverID != nil && *req.DriverID == driverID && req.DriverStatus == models.DriverPending {
			count++
		}
	}
	return count
}

func (m *memoryRequests) pending(driverID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingLocked(driverID)
}

func (m *memoryRequests) SaveWithPayment(ctx context.Context, req *models.WasteRequest, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[req.ID]
	if !ok || stored.Version != req.Version {
		return sql.ErrNoRows
	}
	if payment != nil {
		if existing, ok := m.payments[req.ID]; ok {
			payment.ID = existing.ID
		} else {
			m.payments[req.ID] = payment
		}
		id := payment.ID
		req.PaymentID = &id
	}
	return m.storeLocked(req)
}

func (m *memoryRequests) SettlePayment(ctx context.Context, req *models.WasteRequest, status models.PaymentStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[req.ID]
	if !ok || payment.Status != models.PaymentPending {
		return sql.ErrNoRows
	}
	if err := m.storeLocked(req); err != nil {
		return err
	}
	payment.Status = status
	payment.SettledAt = &at
	return nil
}

func (m *memoryRequests) RecordFeedback(ctx context.Context, req *models.WasteRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[req.ID]
	if !ok || stored.Rating != nil || stored.CollectionStatus != models.CollectionCompleted {
		return sql.ErrNoRows
	}
	stored.Rating = req.Rating
	stored.FeedbackComment = req.FeedbackComment
	stored.FeedbackAt = req.FeedbackAt
	stored.Version++
	req.Version = stored.Version
	return nil
}

func (m *memoryRequests) FindByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[requestID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *payment
	return &copied, nil
}

func (m *memoryRequests) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

func (m *memoryRequests) put(req *models.WasteRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Version == 0 {
		req.Version = 1
	}
	m.items[req.ID] = req.Clone()
}

func matchesFilter(req *models.WasteRequest, f models.WasteRequestFilter) bool {
	if f.UserID != "" && req.UserID != f.UserID {
		return false
	}
	if f.DriverID != "" && (req.DriverID == nil || *req.DriverID != f.DriverID) {
		return false
	}
	if f.City != "" && !strings.EqualFold(req.City, f.City) {
		return false
	}
	if f.DistrictID != "" && req.DistrictID != f.DistrictID {
		return false
	}
	if f.CategoryID != "" && req.CategoryID != f.CategoryID {
		return false
	}
	return anyOf(f.AcceptanceStatus, req.AcceptanceStatus) && anyOf(f.DriverStatus, req.DriverStatus) &&
		anyOf(f.CollectionStatus, req.CollectionStatus) && anyOf(f.PaymentStatus, req.PaymentStatus)
}

func anyOf[S comparable](values []S, v S) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

type memoryCategories map[string]*models.WasteCategory

func (m memoryCategories) FindByID(ctx context.Context, id string) (*models.WasteCategory, error) {
	if c, ok := m[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m memoryCategories) List(ctx context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error) {
	out := make([]models.WasteCategory, 0, len(m))
	for _, c := range m {
		if filter.Active == nil || c.IsActive == *filter.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

type memoryDistricts map[string]*models.District

func (m memoryDistricts) FindByID(ctx context.Context, id string) (*models.District, error) {
	if d, ok := m[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

type memoryDrivers struct {
	drivers  map[string]*models.Driver
	requests *memoryRequests
}

func (m memoryDrivers) FindByID(ctx context.Context, id string) (*models.Driver, error) {
	if d, ok := m.drivers[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m memoryDrivers) FindByUserID(ctx context.Context, userID string) (*models.Driver, error) {
	for _, d := range m.drivers {
		if d.UserID == userID {
			copied := *d
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m memoryDrivers) ListWithLoad(ctx context.Context, filter models.DriverFilter) ([]models.DriverLoad, error) {
	out := make([]models.DriverLoad, 0, len(m.drivers))
	for _, d := range m.drivers {
		if filter.City != "" && !strings.EqualFold(d.City, filter.City) {
			continue
		}
		if filter.Active != nil && d.Active != *filter.Active {
			continue
		}
		out = append(out, models.DriverLoad{Driver: *d, PendingCount: m.requests.pending(d.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryUsers map[string]*models.User

func (m memoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

var (
	fixtureNow  = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	adminActor  = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	ownerActor  = models.Actor{UserID: "user-1", Role: models.RoleUser}
	otherActor  = models.Actor{UserID: "user-2", Role: models.RoleUser}
	driverActor = models.Actor{UserID: "driver-user-1", Role: models.RoleDriver}
)

type lifecycleFixture struct {
	requests   *memoryRequests
	categories memoryCategories
	districts  memoryDistricts
	drivers    memoryDrivers
	users      memoryUsers
	notifier   *recordingNotifier

	resolver    *PaymentResolver
	requestsSvc *WasteRequestService
	assignments *AssignmentService
	feedback    *FeedbackService
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.RequestEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event models.RequestEvent, req *models.WasteRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) recorded() []models.RequestEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.RequestEvent(nil), n.events...)
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	requests := newMemoryRequests()
	f := &lifecycleFixture{
		requests: requests,
		categories: memoryCategories{
			"cat-plastic": {ID: "cat-plastic", Name: "Plastic", PricePerKg: 50, IsUserPaymentRequired: true, IsActive: true},
			"cat-organic": {ID: "cat-organic", Name: "Organic", PricePerKg: 0, IsUserPaymentRequired: false, IsActive: true},
			"cat-glass":   {ID: "cat-glass", Name: "Glass", PricePerKg: 12.5, IsUserPaymentRequired: true, IsActive: true},
			"cat-retired": {ID: "cat-retired", Name: "Retired", PricePerKg: 10, IsUserPaymentRequired: true, IsActive: false},
		},
		districts: memoryDistricts{
			"dst-1":   {ID: "dst-1", Name: "Bandung Raya", Cities: []string{"Bandung", "Cimahi"}, IsActive: true},
			"dst-off": {ID: "dst-off", Name: "Closed", Cities: []string{"Garut"}, IsActive: false},
		},
		drivers: memoryDrivers{
			drivers: map[string]*models.Driver{
				"drv-1":      {ID: "drv-1", UserID: "driver-user-1", Name: "Asep", City: "Bandung", DistrictID: "dst-1", Active: true},
				"drv-2":      {ID: "drv-2", UserID: "driver-user-2", Name: "Budi", City: "Bandung", DistrictID: "dst-1", Active: true},
				"drv-cimahi": {ID: "drv-cimahi", UserID: "driver-user-3", Name: "Cecep", City: "Cimahi", DistrictID: "dst-1", Active: true},
				"drv-idle":   {ID: "drv-idle", UserID: "driver-user-4", Name: "Dadang", City: "Bandung", DistrictID: "dst-1", Active: false},
			},
			requests: requests,
		},
		users: memoryUsers{
			"user-1":        {ID: "user-1", Email: "resident@example.com", FullName: "Resident", Role: models.RoleUser},
			"driver-user-1": {ID: "driver-user-1", Email: "asep@example.com", FullName: "Asep", Role: models.RoleDriver},
		},
		notifier: &recordingNotifier{},
	}

	clock := func() time.Time { return fixtureNow }
	refs := RequestReferences{Categories: f.categories, Districts: f.districts, Drivers: f.drivers, Users: f.users, Payments: requests}

	f.resolver = NewPaymentResolver(requests, f.categories, PaymentConfig{DueAfter: 72 * time.Hour, DefaultMethod: "cash"}, nil, nil, WithNotifier(f.notifier))
	f.resolver.now = clock
	f.requestsSvc = NewWasteRequestService(requests, refs, NewPricingCalculator(2), f.resolver, WasteRequestConfig{MinPickupLeadDays: 2}, nil, nil, WithNotifier(f.notifier))
	f.requestsSvc.now = clock
	f.assignments = NewAssignmentService(requests, f.drivers, nil, NewCapacityGuard(10), time.Second, nil, WithNotifier(f.notifier))
	f.assignments.now = clock
	f.feedback = NewFeedbackService(requests, nil, nil, WithNotifier(f.notifier))
	f.feedback.now = clock
	return f
}

func (f *lifecycleFixture) create(t *testing.T, categoryID string, quantity float64) *models.WasteRequest {
	t.Helper()
	req, err := f.requestsSvc.Create(context.Background(), ownerActor, dto.CreateWasteRequest{
		DistrictID: "dst-1",
		City:       "bandung",
		Address:    "Jl. Asia Afrika 8",
		CategoryID: categoryID,
		Quantity:   quantity,
		PickupDate: "2024-03-12",
	})
	require.NoError(t, err)
	return req
}

func (f *lifecycleFixture) accepted(t *testing.T, categoryID string, quantity float64) *models.WasteRequest {
	t.Helper()
	req := f.create(t, categoryID, quantity)
	req, err := f.requestsSvc.Decide(context.Background(), adminActor, req.ID, dto.DecisionRequest{Decision: "ACCEPTED"})
	require.NoError(t, err)
	return req
}

// inProgress returns a request whose driver accepted and whose collection is PROCESSING.
func (f *lifecycleFixture) inProgress(t *testing.T, categoryID string, quantity float64) *models.WasteRequest {
	t.Helper()
	ctx := context.Background()
	req := f.accepted(t, categoryID, quantity)
	_, err := f.assignments.Assign(ctx, req.ID, "drv-1")
	require.NoError(t, err)
	_, err = f.requestsSvc.DriverDecide(ctx, driverActor, req.ID, dto.DecisionRequest{Decision: "ACCEPTED"})
	require.NoError(t, err)
	req, err = f.requestsSvc.AdvanceCollection(ctx, driverActor, req.ID, dto.CollectionUpdateRequest{Status: "PROCESSING"})
	require.NoError(t, err)
	return req
}

func (f *lifecycleFixture) completed(t *testing.T, categoryID string, quantity float64) *models.WasteRequest {
	t.Helper()
	req := f.inProgress(t, categoryID, quantity)
	req, err := f.requestsSvc.Confirm(context.Background(), ownerActor, req.ID)
	require.NoError(t, err)
	return req
}

func (f *lifecycleFixture) stored(t *testing.T, id string) *models.WasteRequest {
	t.Helper()
	req, err := f.requests.GetByID(context.Background(), id)
	require.NoError(t, err)
	return req
}
