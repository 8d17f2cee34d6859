package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/internal/repository"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

const (
	defaultAssignmentLockTTL = 5 * time.Second
	lockRetryInitial         = 10 * time.Millisecond
	lockRetryMax             = 100 * time.Millisecond
)

type assignmentStore interface {
	GetByID(ctx context.Context, id string) (*models.WasteRequest, error)
	AssignDriver(ctx context.Context, params repository.AssignDriverParams) error
}

type assignmentDriverReader interface {
	FindByID(ctx context.Context, id string) (*models.Driver, error)
	ListWithLoad(ctx context.Context, filter models.DriverFilter) ([]models.DriverLoad, error)
}

type driverLocker interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (string, bool, error)
	ReleaseDriverLock(ctx context.Context, driverID, token string) error
}

// AssignmentService binds accepted requests to drivers without letting any driver
// exceed its pending capacity.
type AssignmentService struct {
	repo    assignmentStore
	drivers assignmentDriverReader
	locker  driverLocker
	guard   CapacityGuard
	lockTTL time.Duration
	logger  *zap.Logger
	hooks   lifecycleHooks
	now     func() time.Time
}

// NewAssignmentService constructs the service. locker may be nil, in which case the
// database transaction alone serialises binds.
func NewAssignmentService(repo assignmentStore, drivers assignmentDriverReader, locker driverLocker, guard CapacityGuard, lockTTL time.Duration, logger *zap.Logger, opts ...LifecycleOption) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = defaultAssignmentLockTTL
	}
	return &AssignmentService{
		repo:    repo,
		drivers: drivers,
		locker:  locker,
		guard:   guard,
		lockTTL: lockTTL,
		logger:  logger,
		hooks:   newLifecycleHooks(logger, opts),
		now:     time.Now,
	}
}

// Assign binds driverID to the request. It fails with ErrDriverAtCapacity when the
// driver already holds the maximum number of pending requests.
func (s *AssignmentService) Assign(ctx context.Context, requestID, driverID string) (*models.WasteRequest, error) {
	requestID = strings.TrimSpace(requestID)
	driverID = strings.TrimSpace(driverID)
	if requestID == "" || driverID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request id and driver id are required")
	}

	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureAssignable(); err != nil {
		s.hooks.metrics.ObserveAssignment(AssignmentRejected)
		return nil, err
	}

	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	if err := ensureAligned(driver, req); err != nil {
		s.hooks.metrics.ObserveAssignment(AssignmentRejected)
		return nil, err
	}

	release, err := s.lock(ctx, driverID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	err = s.repo.AssignDriver(ctx, repository.AssignDriverParams{
		RequestID:       req.ID,
		DriverID:        driverID,
		ExpectedVersion: req.Version,
		Capacity:        s.guard.Capacity(),
		At:              now,
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrCapacityReached):
		s.hooks.metrics.ObserveAssignment(AssignmentAtCapacity)
		return nil, s.guard.Check(s.guard.Capacity())
	case errors.Is(err, sql.ErrNoRows):
		s.hooks.metrics.ObserveAssignment(AssignmentConflict)
		return nil, appErrors.Clone(appErrors.ErrConflict, "request changed while assigning, reload and retry")
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign driver")
	}

	next := req.Clone()
	if err := next.BindDriver(driverID, now); err != nil {
		return nil, err
	}
	next.Version = req.Version + 1

	s.hooks.metrics.ObserveAssignment(AssignmentBound)
	s.logger.Info("driver assigned",
		zap.String("request_id", next.ID),
		zap.String("driver_id", driverID),
	)
	s.hooks.committed(ctx, models.EventDriverAssigned, next)
	return next, nil
}

// Candidates lists active drivers in the request's city with their pending load.
func (s *AssignmentService) Candidates(ctx context.Context, requestID string) ([]models.DriverLoad, error) {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	active := true
	loads, err := s.drivers.ListWithLoad(ctx, models.DriverFilter{City: req.City, Active: &active})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drivers")
	}

	candidates := make([]models.DriverLoad, 0, len(loads))
	for _, load := range loads {
		if !load.Active || !strings.EqualFold(strings.TrimSpace(load.City), strings.TrimSpace(req.City)) {
			continue
		}
		load.AtCapacity = !s.guard.Admits(load.PendingCount)
		candidates = append(candidates, load)
	}
	return candidates, nil
}

// lock waits for the per-driver lock, backing off between attempts. When the lock
// stays busy past lockTTL or the store is unreachable the bind proceeds on the
// driver row lock taken inside AssignDriver.
func (s *AssignmentService) lock(ctx context.Context, driverID string) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}

	deadline := time.Now().Add(s.lockTTL)
	backoff := lockRetryInitial
	for {
		token, ok, err := s.locker.AcquireDriverLock(ctx, driverID, s.lockTTL)
		if err != nil {
			s.logger.Warn("driver lock unavailable", zap.String("driver_id", driverID), zap.Error(err))
			return noop, nil
		}
		if ok {
			return func() {
				if err := s.locker.ReleaseDriverLock(context.Background(), driverID, token); err != nil {
					s.logger.Warn("failed to release driver lock", zap.String("driver_id", driverID), zap.Error(err))
				}
			}, nil
		}

		wait := backoff
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		if wait <= 0 {
			s.hooks.metrics.ObserveAssignment(AssignmentLockBusy)
			s.logger.Warn("driver lock still busy, relying on row lock", zap.String("driver_id", driverID))
			return noop, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "assignment cancelled while waiting for driver lock")
		case <-timer.C:
		}
		if backoff *= 2; backoff > lockRetryMax {
			backoff = lockRetryMax
		}
	}
}

func (s *AssignmentService) loadRequest(ctx context.Context, id string) (*models.WasteRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waste request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste request")
	}
	return req, nil
}

func ensureAligned(driver *models.Driver, req *models.WasteRequest) error {
	if !driver.Active {
		return appErrors.Clone(appErrors.ErrNotAligned, "driver is not active")
	}
	if !strings.EqualFold(strings.TrimSpace(driver.City), strings.TrimSpace(req.City)) {
		return appErrors.Clone(appErrors.ErrNotAligned, "driver does not serve "+req.City)
	}
	return nil
}
