package concert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the concert listing operations.
type Service interface {
	ListConcerts(ctx context.Context, filter api.ConcertFilter) (*api.ConcertListResponse, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) ListConcerts(ctx context.Context, filter api.ConcertFilter) (*api.ConcertListResponse, error) {
	ctx, span := otel.Tracer("ConcertService").Start(ctx, "ListConcerts")
	defer span.End()

	normalizeFilter(&filter)

	concerts, total, err := s.repo.ListConcerts(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("failed to list concerts: %w", err)
	}

	for i := range concerts {
		Decorate(&concerts[i])
	}

	span.SetAttributes(attribute.Int("concerts.count", len(concerts)))
	span.SetStatus(codes.Ok, "concerts listed")
	return &api.ConcertListResponse{
		Concerts:   concerts,
		TotalCount: total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

func normalizeFilter(filter *api.ConcertFilter) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
}

// Decorate fills the display fields derived from the concert date.
func Decorate(item *api.ConcertDisplayItem) {
	d := models.TourDate{Date: item.ConcertDate}
	item.IsPast = d.IsPast()
	item.IsToday = d.IsToday()
	item.DaysUntil = d.DaysUntil()
	item.DateDisplay = FormatDateDisplay(item.ConcertDate, item.EndDate)
}

// FormatDateDisplay renders "TBD", a single date, or a date range. Ranges in
// the same month collapse the month on the end date.
func FormatDateDisplay(date, endDate *time.Time) string {
	if date == nil {
		return "TBD"
	}
	if endDate == nil || endDate.Equal(*date) {
		return date.Format("Jan 02, 2006")
	}
	if date.Year() == endDate.Year() && date.Month() == endDate.Month() {
		return fmt.Sprintf("%s-%s", date.Format("Jan 02"), endDate.Format("02, 2006"))
	}
	return fmt.Sprintf("%s - %s", date.Format("Jan 02"), endDate.Format("Jan 02, 2006"))
}
