package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/models"
)

// RequestNotifier receives committed request changes. Implementations must not block.
type RequestNotifier interface {
	Notify(ctx context.Context, event models.RequestEvent, req *models.WasteRequest)
}

type statsInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// lifecycleHooks runs the side effects that follow a committed state change. None of
// them can fail the operation that triggered them.
type lifecycleHooks struct {
	metrics  *MetricsService
	stats    statsInvalidator
	notifier RequestNotifier
	logger   *zap.Logger
}

// LifecycleOption customises the post-commit hooks of a request service.
type LifecycleOption func(*lifecycleHooks)

// WithMetrics records committed events on m.
func WithMetrics(m *MetricsService) LifecycleOption {
	return func(h *lifecycleHooks) {
		h.metrics = m
	}
}

// WithStatsInvalidation clears cached aggregates after every committed change.
func WithStatsInvalidation(stats statsInvalidator) LifecycleOption {
	return func(h *lifecycleHooks) {
		h.stats = stats
	}
}

// WithNotifier forwards committed changes to n.
func WithNotifier(n RequestNotifier) LifecycleOption {
	return func(h *lifecycleHooks) {
		h.notifier = n
	}
}

func newLifecycleHooks(logger *zap.Logger, opts []LifecycleOption) lifecycleHooks {
	h := lifecycleHooks{logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(&h)
		}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h
}

func (h lifecycleHooks) committed(ctx context.Context, event models.RequestEvent, req *models.WasteRequest) {
	h.metrics.RecordRequestEvent(event)
	if h.stats != nil {
		if err := h.stats.InvalidateCache(ctx); err != nil {
			h.logger.Warn("failed to invalidate stats cache", zap.String("event", string(event)), zap.Error(err))
		}
	}
	if h.notifier != nil && req != nil {
		h.notifier.Notify(ctx, event, req.Clone())
	}
	h.logger.Debug("request change committed",
		zap.String("event", string(event)),
		zap.String("request_id", requestID(req)),
	)
}

func requestID(req *models.WasteRequest) string {
	if req == nil {
		return ""
	}
	return req.ID
}
