package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

const defaultPaymentMethod = "CASH"

type paymentStore interface {
	GetByID(ctx context.Context, id string) (*models.WasteRequest, error)
	SaveWithPayment(ctx context.Context, req *models.WasteRequest, payment *models.Payment) error
	SettlePayment(ctx context.Context, req *models.WasteRequest, status models.PaymentStatus, at time.Time) error
}

type categoryReader interface {
	FindByID(ctx context.Context, id string) (*models.WasteCategory, error)
}

// PaymentConfig is the policy applied to created payment obligations.
type PaymentConfig struct {
	DueAfter      time.Duration
	DefaultMethod string
}

// PaymentResolver derives and persists the payment obligation of a completed pickup.
type PaymentResolver struct {
	repo       paymentStore
	categories categoryReader
	config     PaymentConfig
	validator  *validator.Validate
	logger     *zap.Logger
	hooks      lifecycleHooks
	now        func() time.Time
}

// NewPaymentResolver constructs the resolver.
func NewPaymentResolver(repo paymentStore, categories categoryReader, cfg PaymentConfig, validate *validator.Validate, logger *zap.Logger, opts ...LifecycleOption) *PaymentResolver {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DueAfter <= 0 {
		cfg.DueAfter = 72 * time.Hour
	}
	cfg.DefaultMethod = strings.ToUpper(strings.TrimSpace(cfg.DefaultMethod))
	if cfg.DefaultMethod == "" {
		cfg.DefaultMethod = defaultPaymentMethod
	}
	return &PaymentResolver{
		repo:       repo,
		categories: categories,
		config:     cfg,
		validator:  validate,
		logger:     logger,
		hooks:      newLifecycleHooks(logger, opts),
		now:        time.Now,
	}
}

// Obligation decides what a completed request owes. It has no side effects: the
// returned payment is nil when the category needs no user payment.
func (r *PaymentResolver) Obligation(req *models.WasteRequest, category *models.WasteCategory, now time.Time) (models.PaymentStatus, *models.Payment, error) {
	if req == nil || category == nil {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "request and category are required")
	}
	if !category.IsUserPaymentRequired {
		return models.PaymentNotRequired, nil, nil
	}
	return models.PaymentPending, &models.Payment{
		ID:        uuid.NewString(),
		RequestID: req.ID,
		Amount:    req.EstimatedPrice,
		DueDate:   now.Add(r.config.DueAfter),
		Method:    r.config.DefaultMethod,
		Status:    models.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Resolve retries obligation resolution for a completed request. Resolving twice is a
// no-op that returns the stored state.
func (r *PaymentResolver) Resolve(ctx context.Context, id string) (*models.WasteRequest, error) {
	req, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.PaymentResolved() {
		return req, nil
	}
	if req.CollectionStatus != models.CollectionCompleted {
		return nil, appErrors.ErrCollectionNotComplete
	}

	next := req.Clone()
	if err := r.complete(ctx, next, r.now().UTC()); err != nil {
		if !errors.Is(err, appErrors.ErrConflict) {
			return nil, err
		}
		// A concurrent resolve may have won; that counts as success.
		current, loadErr := r.load(ctx, id)
		if loadErr != nil {
			return nil, loadErr
		}
		if current.PaymentResolved() {
			return current, nil
		}
		return nil, err
	}

	r.hooks.committed(ctx, models.EventPaymentResolved, next)
	return next, nil
}

// complete applies the obligation to req, which must already be COMPLETED in memory,
// and persists request and payment together.
func (r *PaymentResolver) complete(ctx context.Context, req *models.WasteRequest, now time.Time) error {
	category, err := r.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "waste category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste category")
	}

	status, payment, err := r.Obligation(req, category, now)
	if err != nil {
		return err
	}
	var paymentID *string
	if payment != nil {
		paymentID = &payment.ID
	}
	if err := req.ApplyPaymentObligation(status, paymentID, now); err != nil {
		return err
	}

	if err := r.repo.SaveWithPayment(ctx, req, payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "request changed while resolving payment")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save payment obligation")
	}

	r.hooks.metrics.RecordPaymentObligation(status)
	r.logger.Info("payment obligation resolved",
		zap.String("request_id", req.ID),
		zap.String("status", string(status)),
	)
	return nil
}

// Settle applies the external settlement outcome to a PENDING obligation.
func (r *PaymentResolver) Settle(ctx context.Context, id string, payload dto.SettlePaymentRequest) (*models.WasteRequest, error) {
	payload.Status = models.NormalizeStatus(payload.Status)
	if err := r.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	req, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	next := req.Clone()
	status := models.PaymentStatus(payload.Status)
	if err := next.SettlePayment(status, now); err != nil {
		return nil, err
	}

	if err := r.repo.SettlePayment(ctx, next, status, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "payment changed while settling")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}

	r.hooks.committed(ctx, models.EventPaymentSettled, next)
	return next, nil
}

func (r *PaymentResolver) load(ctx context.Context, id string) (*models.WasteRequest, error) {
	req, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waste request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste request")
	}
	return req, nil
}
