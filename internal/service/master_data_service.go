package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/internal/repository"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

type categoryStore interface {
	Create(ctx context.Context, category *models.WasteCategory) error
	Update(ctx context.Context, category *models.WasteCategory) error
	FindByID(ctx context.Context, id string) (*models.WasteCategory, error)
	List(ctx context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error)
}

type districtStore interface {
	Create(ctx context.Context, district *models.District) error
	Update(ctx context.Context, district *models.District) error
	FindByID(ctx context.Context, id string) (*models.District, error)
	List(ctx context.Context, filter models.DistrictFilter) ([]models.District, error)
}

type driverStore interface {
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, driver *models.Driver) error
	FindByID(ctx context.Context, id string) (*models.Driver, error)
	FindByUserID(ctx context.Context, userID string) (*models.Driver, error)
	List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error)
}

// CategoryService manages waste categories. Deactivating a category only affects new
// requests and edits.
type CategoryService struct {
	repo      categoryStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(repo categoryStore, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, validator: validate, logger: logger}
}

// List returns categories, optionally only active ones.
func (s *CategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return items, nil
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.WasteCategory, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "waste category", "failed to load category")
	}
	return category, nil
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, payload dto.CategoryRequest) (*models.WasteCategory, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	category := &models.WasteCategory{
		Name:                  strings.TrimSpace(payload.Name),
		PricePerKg:            *payload.PricePerKg,
		IsUserPaymentRequired: *payload.IsUserPaymentRequired,
		IsActive:              boolOr(payload.IsActive, true),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, writeError(err, "category", "failed to create category")
	}
	s.logger.Info("category created", zap.String("category_id", category.ID))
	return category, nil
}

// Update replaces a category's attributes.
func (s *CategoryService) Update(ctx context.Context, id string, payload dto.CategoryRequest) (*models.WasteCategory, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(payload.Name)
	category.PricePerKg = *payload.PricePerKg
	category.IsUserPaymentRequired = *payload.IsUserPaymentRequired
	category.IsActive = boolOr(payload.IsActive, category.IsActive)
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, writeError(err, "category", "failed to update category")
	}
	return category, nil
}

// DistrictService manages districts and the cities they serve. Existing requests are
// not re-validated when cities change.
type DistrictService struct {
	repo      districtStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDistrictService constructs the service.
func NewDistrictService(repo districtStore, validate *validator.Validate, logger *zap.Logger) *DistrictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistrictService{repo: repo, validator: validate, logger: logger}
}

// List returns districts matching filter.
func (s *DistrictService) List(ctx context.Context, filter models.DistrictFilter) ([]models.District, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list districts")
	}
	return items, nil
}

// Get returns a district by id.
func (s *DistrictService) Get(ctx context.Context, id string) (*models.District, error) {
	district, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "district", "failed to load district")
	}
	return district, nil
}

// Create adds a district.
func (s *DistrictService) Create(ctx context.Context, payload dto.DistrictRequest) (*models.District, error) {
	cities, err := s.validate(payload)
	if err != nil {
		return nil, err
	}
	district := &models.District{
		Name:     strings.TrimSpace(payload.Name),
		Cities:   cities,
		IsActive: boolOr(payload.IsActive, true),
	}
	if err := s.repo.Create(ctx, district); err != nil {
		return nil, writeError(err, "district", "failed to create district")
	}
	s.logger.Info("district created", zap.String("district_id", district.ID))
	return district, nil
}

// Update replaces a district's attributes.
func (s *DistrictService) Update(ctx context.Context, id string, payload dto.DistrictRequest) (*models.District, error) {
	cities, err := s.validate(payload)
	if err != nil {
		return nil, err
	}
	district, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	district.Name = strings.TrimSpace(payload.Name)
	district.Cities = cities
	district.IsActive = boolOr(payload.IsActive, district.IsActive)
	if err := s.repo.Update(ctx, district); err != nil {
		return nil, writeError(err, "district", "failed to update district")
	}
	return district, nil
}

func (s *DistrictService) validate(payload dto.DistrictRequest) ([]string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	seen := make(map[string]struct{}, len(payload.Cities))
	cities := make([]string, 0, len(payload.Cities))
	for _, city := range payload.Cities {
		city = strings.TrimSpace(city)
		key := strings.ToLower(city)
		if city == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, city)
	}
	if len(cities) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "district needs at least one city")
	}
	return cities, nil
}

// DriverService manages driver profiles and lists the requests bound to them.
type DriverService struct {
	repo      driverStore
	districts districtReader
	requests  wasteRequestLister
	validator *validator.Validate
	logger    *zap.Logger
}

type wasteRequestLister interface {
	List(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, int, error)
}

// NewDriverService constructs the service.
func NewDriverService(repo driverStore, districts districtReader, requests wasteRequestLister, validate *validator.Validate, logger *zap.Logger) *DriverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{repo: repo, districts: districts, requests: requests, validator: validate, logger: logger}
}

// List returns drivers matching filter.
func (s *DriverService) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drivers")
	}
	return items, nil
}

// Get returns a driver. Drivers may only read their own profile.
func (s *DriverService) Get(ctx context.Context, actor models.Actor, id string) (*models.Driver, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "driver", "failed to load driver")
	}
	if !actor.IsAdmin() && driver.UserID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	return driver, nil
}

// Create registers a driver profile for an existing account.
func (s *DriverService) Create(ctx context.Context, payload dto.DriverRequest) (*models.Driver, error) {
	driver := &models.Driver{UserID: strings.TrimSpace(payload.UserID), Active: true}
	if err := s.apply(ctx, driver, payload); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, writeError(err, "driver", "failed to create driver")
	}
	s.logger.Info("driver created", zap.String("driver_id", driver.ID), zap.String("city", driver.City))
	return driver, nil
}

// Update replaces a driver's attributes. The owning account cannot change.
func (s *DriverService) Update(ctx context.Context, id string, payload dto.DriverRequest) (*models.Driver, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "driver", "failed to load driver")
	}
	if strings.TrimSpace(payload.UserID) != driver.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "driver account cannot be changed")
	}
	if err := s.apply(ctx, driver, payload); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, driver); err != nil {
		return nil, writeError(err, "driver", "failed to update driver")
	}
	return driver, nil
}

// Requests lists one page of requests bound to the driver.
func (s *DriverService) Requests(ctx context.Context, actor models.Actor, id string, query dto.WasteRequestQuery) ([]models.WasteRequest, *models.Pagination, error) {
	driver, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	filter, err := BuildRequestFilter(query)
	if err != nil {
		return nil, nil, err
	}
	filter.DriverID = driver.ID
	items, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list driver requests")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func (s *DriverService) apply(ctx context.Context, driver *models.Driver, payload dto.DriverRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	district, err := s.districts.FindByID(ctx, payload.DistrictID)
	if err != nil {
		return notFoundOr(err, "district", "failed to load district")
	}
	city, ok := district.MatchCity(payload.City)
	if !ok {
		return appErrors.Clone(appErrors.ErrCityNotInDistrict, fmt.Sprintf("%s is not served by district %s", payload.City, district.Name))
	}
	driver.Name = strings.TrimSpace(payload.Name)
	driver.Phone = strings.TrimSpace(payload.Phone)
	driver.DistrictID = district.ID
	driver.City = city
	driver.Active = boolOr(payload.Active, driver.Active)
	return nil
}

func notFoundOr(err error, entity, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func writeError(err error, entity, message string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Clone(appErrors.ErrConflict, entity+" already exists")
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
