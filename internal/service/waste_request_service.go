package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

const (
	pickupDateLayout      = "2006-01-02"
	defaultPageSize       = 20
	maxPageSize           = 100
	defaultPickupLeadDays = 2
)

type wasteRequestStore interface {
	Create(ctx context.Context, req *models.WasteRequest) error
	GetByID(ctx context.Context, id string) (*models.WasteRequest, error)
	List(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, int, error)
	UpdateState(ctx context.Context, req *models.WasteRequest) error
	Delete(ctx context.Context, id string) error
}

type districtReader interface {
	FindByID(ctx context.Context, id string) (*models.District, error)
}

type driverReader interface {
	FindByID(ctx context.Context, id string) (*models.Driver, error)
	FindByUserID(ctx context.Context, userID string) (*models.Driver, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type paymentReader interface {
	FindByRequestID(ctx context.Context, requestID string) (*models.Payment, error)
}

// RequestReferences groups the readers used to validate and populate a request.
type RequestReferences struct {
	Categories categoryReader
	Districts  districtReader
	Drivers    driverReader
	Users      userReader
	Payments   paymentReader
}

// WasteRequestConfig holds the business rules applied to new and edited requests.
type WasteRequestConfig struct {
	MinPickupLeadDays int
}

// WasteRequestService runs the request lifecycle: creation, edits, admin and driver
// decisions, collection progress and confirmation.
type WasteRequestService struct {
	repo      wasteRequestStore
	refs      RequestReferences
	pricing   *PricingCalculator
	resolver  *PaymentResolver
	access    requestAccess
	config    WasteRequestConfig
	validator *validator.Validate
	logger    *zap.Logger
	hooks     lifecycleHooks
	now       func() time.Time
}

// NewWasteRequestService wires the lifecycle service.
func NewWasteRequestService(
	repo wasteRequestStore,
	refs RequestReferences,
	pricing *PricingCalculator,
	resolver *PaymentResolver,
	cfg WasteRequestConfig,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...LifecycleOption,
) *WasteRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricing == nil {
		pricing = NewPricingCalculator(2)
	}
	if cfg.MinPickupLeadDays < 0 {
		cfg.MinPickupLeadDays = defaultPickupLeadDays
	}
	return &WasteRequestService{
		repo:      repo,
		refs:      refs,
		pricing:   pricing,
		resolver:  resolver,
		access:    requestAccess{drivers: refs.Drivers},
		config:    cfg,
		validator: validate,
		logger:    logger,
		hooks:     newLifecycleHooks(logger, opts),
		now:       time.Now,
	}
}

// Create files a new request in acceptance PENDING with its price estimated.
func (s *WasteRequestService) Create(ctx context.Context, actor models.Actor, payload dto.CreateWasteRequest) (*models.WasteRequest, error) {
	if actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleDriver {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "drivers cannot file requests")
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if payload.Quantity <= 0 {
		return nil, appErrors.ErrInvalidQuantity
	}

	now := s.now().UTC()
	pickup, err := s.parsePickupDate(payload.PickupDate, now)
	if err != nil {
		return nil, err
	}
	city, err := s.resolveCity(ctx, payload.DistrictID, payload.City)
	if err != nil {
		return nil, err
	}
	category, err := s.activeCategory(ctx, payload.CategoryID)
	if err != nil {
		return nil, err
	}
	price, err := s.pricing.Estimate(category, payload.Quantity)
	if err != nil {
		return nil, err
	}

	owner := actor.UserID
	if actor.IsAdmin() && strings.TrimSpace(payload.UserID) != "" {
		owner = strings.TrimSpace(payload.UserID)
	}

	req := &models.WasteRequest{
		UserID:           owner,
		DistrictID:       payload.DistrictID,
		City:             city,
		Address:          strings.TrimSpace(payload.Address),
		Latitude:         payload.Latitude,
		Longitude:        payload.Longitude,
		CategoryID:       category.ID,
		Quantity:         payload.Quantity,
		PickupDate:       pickup,
		EstimatedPrice:   price,
		AcceptanceStatus: models.AcceptancePending,
		DriverStatus:     models.DriverUnassigned,
		CollectionStatus: models.CollectionPending,
		PaymentStatus:    models.PaymentPending,
		CreatedAt:        now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create waste request")
	}

	s.hooks.committed(ctx, models.EventRequestCreated, req)
	return req, nil
}

// Update edits core fields while the request still awaits a decision. The price is
// re-estimated when quantity or category change.
func (s *WasteRequestService) Update(ctx context.Context, actor models.Actor, id string, payload dto.UpdateWasteRequest) (*models.WasteRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.ensureOwnerOrAdmin(actor, req); err != nil {
		return nil, err
	}
	if len(payload.Immutable) > 0 {
		return nil, appErrors.Clone(appErrors.ErrImmutableField, fmt.Sprintf("fields cannot be changed: %s", strings.Join(payload.Immutable, ", ")))
	}
	if err := req.EnsureEditable(); err != nil {
		return nil, err
	}
	if payload.Version != nil && *payload.Version != req.Version {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request was modified by someone else")
	}

	next := req.Clone()
	if payload.Quantity != nil {
		if *payload.Quantity <= 0 {
			return nil, appErrors.ErrInvalidQuantity
		}
		next.Quantity = *payload.Quantity
	}
	if payload.PickupDate != nil {
		pickup, err := s.parsePickupDate(*payload.PickupDate, req.CreatedAt)
		if err != nil {
			return nil, err
		}
		next.PickupDate = pickup
	}
	if payload.DistrictID != nil || payload.City != nil {
		districtID := derefOr(payload.DistrictID, req.DistrictID)
		city, err := s.resolveCity(ctx, districtID, derefOr(payload.City, req.City))
		if err != nil {
			return nil, err
		}
		next.DistrictID = districtID
		next.City = city
	}
	if payload.Address != nil {
		next.Address = strings.TrimSpace(*payload.Address)
	}
	if payload.Latitude != nil {
		next.Latitude = *payload.Latitude
	}
	if payload.Longitude != nil {
		next.Longitude = *payload.Longitude
	}

	categoryChanged := payload.CategoryID != nil && *payload.CategoryID != req.CategoryID
	if categoryChanged || next.Quantity != req.Quantity {
		var category *models.WasteCategory
		if categoryChanged {
			category, err = s.activeCategory(ctx, *payload.CategoryID)
		} else {
			category, err = s.category(ctx, req.CategoryID)
		}
		if err != nil {
			return nil, err
		}
		price, err := s.pricing.Estimate(category, next.Quantity)
		if err != nil {
			return nil, err
		}
		next.CategoryID = category.ID
		next.EstimatedPrice = price
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateState(ctx, next); err != nil {
		return nil, s.writeFailed(ctx, id, err, "failed to update waste request")
	}

	s.hooks.committed(ctx, models.EventRequestUpdated, next)
	return next, nil
}

// Delete removes a request that has not been decided yet.
func (s *WasteRequestService) Delete(ctx context.Context, actor models.Actor, id string) error {
	req, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.access.ensureOwnerOrAdmin(actor, req); err != nil {
		return err
	}
	if err := req.EnsureDeletable(); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete waste request")
		}
		current, loadErr := s.load(ctx, id)
		if loadErr != nil {
			return loadErr
		}
		return current.EnsureDeletable()
	}

	s.hooks.committed(ctx, models.EventRequestDeleted, req)
	return nil
}

// Get returns a request visible to actor.
func (s *WasteRequestService) Get(ctx context.Context, actor models.Actor, id string) (*models.WasteRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.ensureParticipant(ctx, actor, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Detail returns the request with category, district, driver, user and payment populated.
func (s *WasteRequestService) Detail(ctx context.Context, actor models.Actor, id string) (*models.WasteRequestDetail, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, req)
}

func (s *WasteRequestService) populate(ctx context.Context, req *models.WasteRequest) (*models.WasteRequestDetail, error) {
	detail := &models.WasteRequestDetail{WasteRequest: *req}
	var err error

	if s.refs.Categories != nil {
		if detail.Category, err = optional(s.refs.Categories.FindByID(ctx, req.CategoryID)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste category")
		}
	}
	if s.refs.Districts != nil {
		if detail.District, err = optional(s.refs.Districts.FindByID(ctx, req.DistrictID)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load district")
		}
	}
	if s.refs.Users != nil {
		if detail.User, err = optional(s.refs.Users.FindByID(ctx, req.UserID)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
		}
	}
	if s.refs.Drivers != nil && req.DriverID != nil {
		if detail.Driver, err = optional(s.refs.Drivers.FindByID(ctx, *req.DriverID)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
		}
	}
	if s.refs.Payments != nil && req.PaymentID != nil {
		if detail.Payment, err = optional(s.refs.Payments.FindByRequestID(ctx, req.ID)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
		}
	}
	return detail, nil
}

// List returns one page of requests. Residents only see their own requests and
// drivers only those bound to them.
func (s *WasteRequestService) List(ctx context.Context, actor models.Actor, query dto.WasteRequestQuery) ([]models.WasteRequest, *models.Pagination, error) {
	filter, err := s.scopedFilter(ctx, actor, query)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.hooks.metrics.ObserveDBQuery("waste_requests.list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waste requests")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (s *WasteRequestService) scopedFilter(ctx context.Context, actor models.Actor, query dto.WasteRequestQuery) (models.WasteRequestFilter, error) {
	if actor.UserID == "" {
		return models.WasteRequestFilter{}, appErrors.ErrUnauthorized
	}
	filter, err := BuildRequestFilter(query)
	if err != nil {
		return filter, err
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleDriver:
		driverID, err := s.access.driverID(ctx, actor)
		if err != nil {
			return filter, err
		}
		filter.DriverID = driverID
	default:
		filter.UserID = actor.UserID
	}
	return filter, nil
}

// Decide applies the administrator's acceptance decision.
func (s *WasteRequestService) Decide(ctx context.Context, actor models.Actor, id string, payload dto.DecisionRequest) (*models.WasteRequest, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	payload.Decision = models.NormalizeStatus(payload.Decision)
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	return s.transition(ctx, id, models.EventRequestDecided, nil, func(req *models.WasteRequest, now time.Time) error {
		return req.Decide(models.AcceptanceStatus(payload.Decision), now)
	})
}

// DriverDecide applies the bound driver's answer to an assignment.
func (s *WasteRequestService) DriverDecide(ctx context.Context, actor models.Actor, id string, payload dto.DecisionRequest) (*models.WasteRequest, error) {
	payload.Decision = models.NormalizeStatus(payload.Decision)
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	return s.transition(ctx, id, models.EventDriverDecided,
		func(req *models.WasteRequest) error { return s.access.ensureBoundDriver(ctx, actor, req) },
		func(req *models.WasteRequest, now time.Time) error {
			return req.DriverDecide(models.DriverStatus(payload.Decision), now)
		})
}

// AdvanceCollection moves the pickup to PROCESSING or CANCELLED.
func (s *WasteRequestService) AdvanceCollection(ctx context.Context, actor models.Actor, id string, payload dto.CollectionUpdateRequest) (*models.WasteRequest, error) {
	payload.Status = models.NormalizeStatus(payload.Status)
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	return s.transition(ctx, id, models.EventCollectionUpdated,
		func(req *models.WasteRequest) error { return s.access.ensureParticipant(ctx, actor, req) },
		func(req *models.WasteRequest, now time.Time) error {
			return req.AdvanceCollection(models.CollectionStatus(payload.Status), now)
		})
}

// Confirm completes the collection and resolves the payment obligation in the same write.
func (s *WasteRequestService) Confirm(ctx context.Context, actor models.Actor, id string) (*models.WasteRequest, error) {
	if s.resolver == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "payment resolver not configured")
	}
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.access.ensureOwnerOrAdmin(actor, req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	next := req.Clone()
	if err := next.ConfirmCollection(now); err != nil {
		return nil, err
	}
	if err := s.resolver.complete(ctx, next, now); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, s.conflict(ctx, id)
		}
		return nil, err
	}

	s.hooks.committed(ctx, models.EventCollectionCompleted, next)
	return next, nil
}

// transition loads the request, authorises, applies mutate to a copy and writes it back
// conditionally on the version that was read.
func (s *WasteRequestService) transition(
	ctx context.Context,
	id string,
	event models.RequestEvent,
	authorize func(*models.WasteRequest) error,
	mutate func(*models.WasteRequest, time.Time) error,
) (*models.WasteRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if authorize != nil {
		if err := authorize(req); err != nil {
			return nil, err
		}
	}

	next := req.Clone()
	if err := mutate(next, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, next); err != nil {
		return nil, s.writeFailed(ctx, id, err, "failed to update waste request")
	}

	s.hooks.committed(ctx, event, next)
	return next, nil
}

func (s *WasteRequestService) writeFailed(ctx context.Context, id string, err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return s.conflict(ctx, id)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// conflict classifies a lost conditional write by re-reading the row.
func (s *WasteRequestService) conflict(ctx context.Context, id string) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info("conditional write lost",
		zap.String("request_id", id),
		zap.Int("version", current.Version),
	)
	return appErrors.Clone(appErrors.ErrConflict, "request was modified concurrently, reload and retry")
}

func (s *WasteRequestService) load(ctx context.Context, id string) (*models.WasteRequest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request id is required")
	}
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waste request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste request")
	}
	return req, nil
}

// parsePickupDate accepts dates on or after createdAt + MinPickupLeadDays, comparing
// UTC calendar days.
func (s *WasteRequestService) parsePickupDate(raw string, createdAt time.Time) (time.Time, error) {
	pickup, err := time.ParseInLocation(pickupDateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "pickup date must use YYYY-MM-DD")
	}
	earliest := truncateDay(createdAt).AddDate(0, 0, s.config.MinPickupLeadDays)
	if pickup.Before(earliest) {
		return time.Time{}, appErrors.Clone(appErrors.ErrInvalidPickupDate,
			fmt.Sprintf("pickup date must be on or after %s", earliest.Format(pickupDateLayout)))
	}
	return pickup, nil
}

// resolveCity checks that the district is active and contains city, returning the
// district's spelling of it.
func (s *WasteRequestService) resolveCity(ctx context.Context, districtID, city string) (string, error) {
	district, err := s.refs.Districts.FindByID(ctx, districtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "district not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load district")
	}
	if !district.IsActive {
		return "", appErrors.Clone(appErrors.ErrValidation, "district is not active")
	}
	canonical, ok := district.MatchCity(city)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrCityNotInDistrict, fmt.Sprintf("%s is not served by district %s", city, district.Name))
	}
	return canonical, nil
}

func (s *WasteRequestService) activeCategory(ctx context.Context, id string) (*models.WasteCategory, error) {
	category, err := s.category(ctx, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive {
		return nil, appErrors.Clone(appErrors.ErrCategoryInactive, fmt.Sprintf("waste category %s is not active", category.Name))
	}
	return category, nil
}

func (s *WasteRequestService) category(ctx context.Context, id string) (*models.WasteCategory, error) {
	category, err := s.refs.Categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waste category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste category")
	}
	return category, nil
}

// BuildRequestFilter converts listing query parameters into a repository filter.
// Unknown status values are rejected.
func BuildRequestFilter(query dto.WasteRequestQuery) (models.WasteRequestFilter, error) {
	filter := models.WasteRequestFilter{
		UserID:     strings.TrimSpace(query.UserID),
		DriverID:   strings.TrimSpace(query.DriverID),
		City:       strings.TrimSpace(query.City),
		DistrictID: strings.TrimSpace(query.DistrictID),
		CategoryID: strings.TrimSpace(query.CategoryID),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	var err error
	if filter.AcceptanceStatus, err = parseStatuses[models.AcceptanceStatus]("acceptanceStatus", query.AcceptanceStatus); err != nil {
		return filter, err
	}
	if filter.DriverStatus, err = parseStatuses[models.DriverStatus]("driverStatus", query.DriverStatus); err != nil {
		return filter, err
	}
	if filter.CollectionStatus, err = parseStatuses[models.CollectionStatus]("collectionStatus", query.CollectionStatus); err != nil {
		return filter, err
	}
	if filter.PaymentStatus, err = parseStatuses[models.PaymentStatus]("paymentStatus", query.PaymentStatus); err != nil {
		return filter, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return filter, nil
}

type statusValue interface {
	~string
	Valid() bool
}

func parseStatuses[S statusValue](field string, raw []string) ([]S, error) {
	var out []S
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			normalized := models.NormalizeStatus(part)
			if normalized == "" {
				continue
			}
			s := S(normalized)
			if !s.Valid() {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown %s %q", field, part))
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func optional[T any](value *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func derefOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
