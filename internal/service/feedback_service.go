package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

type feedbackStore interface {
	GetByID(ctx context.Context, id string) (*models.WasteRequest, error)
	RecordFeedback(ctx context.Context, req *models.WasteRequest) error
}

// FeedbackService records the resident's rating once a pickup is completed.
type FeedbackService struct {
	repo      feedbackStore
	access    requestAccess
	validator *validator.Validate
	logger    *zap.Logger
	hooks     lifecycleHooks
	now       func() time.Time
}

// NewFeedbackService constructs the service.
func NewFeedbackService(repo feedbackStore, validate *validator.Validate, logger *zap.Logger, opts ...LifecycleOption) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		hooks:     newLifecycleHooks(logger, opts),
		now:       time.Now,
	}
}

// Record stores rating and comment. Checks run in order: rating range, collection
// completed, no earlier feedback.
func (s *FeedbackService) Record(ctx context.Context, actor models.Actor, id string, payload dto.FeedbackRequest) (*models.WasteRequest, error) {
	if err := models.ValidateRating(payload.Rating); err != nil {
		return nil, err
	}
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

	next := req.Clone()
	if err := next.RecordFeedback(payload.Rating, strings.TrimSpace(payload.Comment), s.now().UTC()); err != nil {
		return nil, err
	}

	if err := s.repo.RecordFeedback(ctx, next); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record feedback")
		}
		return nil, s.classifyLostWrite(ctx, id)
	}

	s.hooks.committed(ctx, models.EventFeedbackRecorded, next)
	return next, nil
}

func (s *FeedbackService) classifyLostWrite(ctx context.Context, id string) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case current.CollectionStatus != models.CollectionCompleted:
		return appErrors.ErrCollectionNotComplete
	case current.HasFeedback():
		return appErrors.ErrFeedbackAlreadyRecorded
	default:
		return appErrors.Clone(appErrors.ErrConflict, "request changed while recording feedback")
	}
}

func (s *FeedbackService) load(ctx context.Context, id string) (*models.WasteRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "waste request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waste request")
	}
	return req, nil
}
