package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/dto"
	"github.com/noah-isme/waste-collection-api/internal/models"
	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

const (
	statsCachePrefix = "stats:"
	// statsGenerationKey sits outside statsCachePrefix so prefix cleanup keeps it.
	statsGenerationKey = "stats-generation"
)

// AggregateStats folds a request snapshot into dashboard counts. Every status value is
// present in the result even when its count is zero.
func AggregateStats(requests []models.WasteRequest) models.WasteRequestStats {
	stats := models.WasteRequestStats{
		ByAcceptance: zeroCounts(models.AcceptanceStatuses),
		ByDriver:     zeroCounts(models.DriverStatuses),
		ByCollection: zeroCounts(models.CollectionStatuses),
		ByPayment:    zeroCounts(models.PaymentStatuses),
		ByCity:       make(map[string]models.CountAndQuantity),
		ByCategory:   make(map[string]models.CountAndQuantity),
	}

	for i := range requests {
		req := &requests[i]
		stats.Total++
		stats.ByAcceptance[req.AcceptanceStatus]++
		stats.ByDriver[req.DriverStatus]++
		stats.ByCollection[req.CollectionStatus]++
		stats.ByPayment[req.PaymentStatus]++
		addQuantity(stats.ByCity, req.City, req.Quantity)
		addQuantity(stats.ByCategory, req.CategoryID, req.Quantity)
		if req.FullyCompleted() {
			stats.FullyCompleted++
		}
	}
	return stats
}

func zeroCounts[S comparable](values []S) map[S]int {
	counts := make(map[S]int, len(values))
	for _, v := range values {
		counts[v] = 0
	}
	return counts
}

func addQuantity(bucket map[string]models.CountAndQuantity, key string, quantity float64) {
	entry := bucket[key]
	entry.Count++
	entry.Quantity += quantity
	bucket[key] = entry
}

type statsStore interface {
	ListAll(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, error)
}

// StatsService serves aggregate summaries, cached per filter.
type StatsService struct {
	repo   statsStore
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsService constructs the service. cache may be nil.
func NewStatsService(repo statsStore, cache *CacheService, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Summary aggregates every request matching query.
func (s *StatsService) Summary(ctx context.Context, query dto.WasteRequestQuery) (*models.WasteRequestStats, bool, error) {
	filter, err := BuildRequestFilter(query)
	if err != nil {
		return nil, false, err
	}
	generation, ok := s.cache.Generation(ctx, statsGenerationKey)
	if !ok {
		stats, err := s.aggregate(ctx, filter)
		return stats, false, err
	}
	key := fmt.Sprintf("%s#%d", statsCacheKey(filter), generation)

	var cached models.WasteRequestStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	stats, err := s.aggregate(ctx, filter)
	if err != nil {
		return nil, false, err
	}
	// A mutation committed during the read has already moved the generation, so
	// this entry is written under a key no later read uses.
	if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
		s.logger.Debug("stats cache not written", zap.String("key", key), zap.Error(err))
	}
	return stats, false, nil
}

func (s *StatsService) aggregate(ctx context.Context, filter models.WasteRequestFilter) (*models.WasteRequestStats, error) {
	requests, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests for stats")
	}
	stats := AggregateStats(requests)
	return &stats, nil
}

// InvalidateCache retires every cached summary by advancing the generation, then
// drops the retired entries.
func (s *StatsService) InvalidateCache(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if err := s.cache.BumpGeneration(ctx, statsGenerationKey); err != nil {
		return err
	}
	return s.cache.Invalidate(ctx, statsCachePrefix+"*")
}

// statsCacheKey is stable for equal filters regardless of status order. Paging does
// not affect aggregates and is left out.
func statsCacheKey(filter models.WasteRequestFilter) string {
	values := url.Values{}
	set := func(name, value string) {
		if value != "" {
			values.Set(name, value)
		}
	}
	set("user", filter.UserID)
	set("driver", filter.DriverID)
	set("city", strings.ToLower(filter.City))
	set("district", filter.DistrictID)
	set("category", filter.CategoryID)
	set("acceptance", joinSorted(filter.AcceptanceStatus))
	set("driver_status", joinSorted(filter.DriverStatus))
	set("collection", joinSorted(filter.CollectionStatus))
	set("payment", joinSorted(filter.PaymentStatus))

	encoded := values.Encode()
	if encoded == "" {
		encoded = "all"
	}
	return statsCachePrefix + encoded
}

func joinSorted[S ~string](values []S) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
