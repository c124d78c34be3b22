package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/api/concert"
)

const (
	summaryCacheKey = "dashboard:summary"
	summaryTTL      = 30 * time.Second
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the dashboard operations.
type Service interface {
	GetSummary(ctx context.Context) (*api.DashboardSummary, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(summaryTTL, 2*summaryTTL),
	}
}

// GetSummary returns the dashboard aggregates, served from a short-lived
// cache so the landing page does not hammer the aggregate queries.
func (s *ServiceImpl) GetSummary(ctx context.Context) (*api.DashboardSummary, error) {
	ctx, span := otel.Tracer("DashboardService").Start(ctx, "GetSummary")
	defer span.End()

	if cached, found := s.cache.Get(summaryCacheKey); found {
		span.SetStatus(codes.Ok, "summary served from cache")
		return cached.(*api.DashboardSummary), nil
	}

	summary, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate query failed")
		return nil, fmt.Errorf("failed to load dashboard summary: %w", err)
	}

	next, err := s.repo.GetNextConcert(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "next concert query failed")
		return nil, fmt.Errorf("failed to load next concert: %w", err)
	}
	if next != nil {
		concert.Decorate(next)
	}
	summary.NextConcert = next

	s.cache.SetDefault(summaryCacheKey, summary)
	span.SetStatus(codes.Ok, "summary computed")
	return summary, nil
}
