package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const (
	overdueListLimit            = 20
	defaultNavigatorUpdateLimit = 10
	defaultNavigatorUpdateMax   = 100
)

// StatsCache stores computed statistics between requests. Get reports the
// cache generation; a Set for a generation that has since been invalidated
// is never served.
type StatsCache interface {
	Get(ctx context.Context) (*domain.Stats, int64, error)
	Set(ctx context.Context, generation int64, stats domain.Stats) error
	Invalidate(ctx context.Context) error
}

// StatsService derives operational statistics from the complaint store.
type StatsService struct {
	store    repository.Store
	cache    StatsCache
	logger   *zap.Logger
	maxLimit int
	now      func() time.Time
}

// StatsDependencies bundles collaborators for the stats service.
type StatsDependencies struct {
	Store  repository.Store
	Cache  StatsCache
	Logger *zap.Logger
	// NavigatorUpdatesMax caps GetNavigatorUpdates; zero means 100.
	NavigatorUpdatesMax int
	Clock               func() time.Time
}

// Dashboard groups everything the admin overview needs.
type Dashboard struct {
	Stats            domain.Stats             `json:"stats"`
	Overdue          []domain.Complaint       `json:"overdue"`
	NavigatorUpdates []domain.NavigatorUpdate `json:"navigatorUpdates"`
}

// NewStatsService constructs the service.
func NewStatsService(deps StatsDependencies) *StatsService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxLimit := deps.NavigatorUpdatesMax
	if maxLimit <= 0 {
		maxLimit = defaultNavigatorUpdateMax
	}
	return &StatsService{
		store:    deps.Store,
		cache:    deps.Cache,
		logger:   logger,
		maxLimit: maxLimit,
		now:      clock,
	}
}

// GetStats returns the backlog summary. Cache failures fall through to the
// store. Cached values live for the cache TTL at most, which bounds how late
// overdueCases notices a due date passing.
func (s *StatsService) GetStats(ctx context.Context, caller domain.Caller) (*domain.Stats, error) {
	if err := authorize(caller, ActionViewStats); err != nil {
		return nil, err
	}
	cacheable := false
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.logger.Warn("stats cache read failed", zap.Error(err))
		case cached != nil:
			return cached, nil
		default:
			cacheable = true
			generation = gen
		}
	}

	agg, err := s.store.Complaints().Aggregate(ctx, s.now())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats := computeStats(agg)

	if cacheable {
		if err := s.cache.Set(ctx, generation, stats); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return &stats, nil
}

// GetOverdueComplaints lists up to 20 overdue complaints, earliest expected
// date first.
func (s *StatsService) GetOverdueComplaints(ctx context.Context, caller domain.Caller) ([]domain.Complaint, error) {
	if err := authorize(caller, ActionViewStats); err != nil {
		return nil, err
	}
	complaints, err := s.store.Complaints().ListOverdue(ctx, s.now(), overdueListLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// GetNavigatorUpdates lists the most recent status changes made by
// navigators.
func (s *StatsService) GetNavigatorUpdates(ctx context.Context, caller domain.Caller, limit int) ([]domain.NavigatorUpdate, error) {
	if err := authorize(caller, ActionViewStats); err != nil {
		return nil, err
	}
	updates, err := s.store.History().ListRecentByRole(ctx, domain.RoleNavigator, s.clampLimit(limit))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return updates, nil
}

// Dashboard fetches stats, overdue complaints and navigator updates in
// parallel.
func (s *StatsService) Dashboard(ctx context.Context, caller domain.Caller) (*Dashboard, error) {
	if err := authorize(caller, ActionViewStats); err != nil {
		return nil, err
	}

	var (
		dashboard Dashboard
		g, gctx   = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		stats, err := s.GetStats(gctx, caller)
		if err != nil {
			return err
		}
		dashboard.Stats = *stats
		return nil
	})
	g.Go(func() error {
		overdue, err := s.GetOverdueComplaints(gctx, caller)
		if err != nil {
			return err
		}
		dashboard.Overdue = overdue
		return nil
	})
	g.Go(func() error {
		updates, err := s.GetNavigatorUpdates(gctx, caller, defaultNavigatorUpdateLimit)
		if err != nil {
			return err
		}
		dashboard.NavigatorUpdates = updates
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *StatsService) clampLimit(limit int) int {
	if limit <= 0 {
		return defaultNavigatorUpdateLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func computeStats(agg repository.ComplaintAggregate) domain.Stats {
	stats := domain.Stats{
		ActiveCases:  agg.Active,
		OverdueCases: agg.Overdue,
	}
	if agg.AvgResponseSeconds != nil {
		stats.AvgResponseHours = roundOneDecimal(*agg.AvgResponseSeconds / 3600)
	}
	if agg.Total > 0 {
		stats.ResolutionRate = roundOneDecimal(float64(agg.Resolved) * 100 / float64(agg.Total))
	}
	return stats
}

// roundOneDecimal rounds half-up to one decimal place.
func roundOneDecimal(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
