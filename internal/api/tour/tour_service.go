package tour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/models"
)

var (
	ErrTourNotFound   = errors.New("tour not found")
	ErrDateNotFound   = errors.New("tour date not found")
	ErrArtistNotFound = errors.New("artist not found")
	ErrInvalidStatus  = errors.New("invalid status value")
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business operations on tours and their show dates.
type Service interface {
	CreateTour(ctx context.Context, req api.CreateTourRequest) (*models.TourDetail, error)
	GetTour(ctx context.Context, id uuid.UUID) (*models.TourDetail, error)
	ListTours(ctx context.Context, artistID *uuid.UUID, status *models.TourStatus, year *int) (*api.TourListResponse, error)
	UpdateTour(ctx context.Context, id uuid.UUID, req api.UpdateTourRequest) (*models.TourDetail, error)
	DeleteTour(ctx context.Context, id uuid.UUID) error

	AddTourDate(ctx context.Context, tourID uuid.UUID, req api.CreateTourDateRequest) (*models.TourDate, error)
	UpdateTourDate(ctx context.Context, tourID, dateID uuid.UUID, req api.UpdateTourDateRequest) (*models.TourDate, error)
	DeleteTourDate(ctx context.Context, tourID, dateID uuid.UUID) error
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

func (s *ServiceImpl) CreateTour(ctx context.Context, req api.CreateTourRequest) (*models.TourDetail, error) {
	ctx, span := otel.Tracer("TourService").Start(ctx, "CreateTour", trace.WithAttributes(
		attribute.String("artist.id", req.ArtistID.String()),
		attribute.String("tour.name", req.TourName),
	))
	defer span.End()

	exists, err := s.repo.ArtistExists(ctx, req.ArtistID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to check artist: %w", err)
	}
	if !exists {
		span.SetStatus(codes.Error, "artist not found")
		return nil, ErrArtistNotFound
	}

	tour := models.Tour{
		ArtistID:            req.ArtistID,
		TourName:            req.TourName,
		Year:                req.Year,
		Status:              models.TourStatusAnnounced,
		HasTBDDates:         req.HasTBDDates,
		HasTBDVenues:        req.HasTBDVenues,
		TotalShowsAnnounced: len(req.Dates),
		TotalShowsEstimated: req.TotalShowsEstimated,
		Description:         req.Description,
		AnnouncementDate:    req.AnnouncementDate,
		TourStartDate:       req.TourStartDate,
		TourEndDate:         req.TourEndDate,
		Regions:             req.Regions,
	}

	dates := make([]models.TourDate, 0, len(req.Dates))
	for _, dr := range req.Dates {
		dates = append(dates, newTourDate(dr))
	}
	markSeoulKickoff(dates)
	for _, d := range dates {
		if d.IsTBD() {
			tour.HasTBDDates = true
			break
		}
	}

	id, err := s.repo.CreateTourWithDates(ctx, tour, dates)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}

	s.logger.InfoContext(ctx, "Created tour",
		slog.String("tourID", id.String()),
		slog.String("tourName", req.TourName),
		slog.Int("dates", len(dates)))
	span.SetStatus(codes.Ok, "tour created")
	return s.loadDetail(ctx, id)
}

func (s *ServiceImpl) GetTour(ctx context.Context, id uuid.UUID) (*models.TourDetail, error) {
	ctx, span := otel.Tracer("TourService").Start(ctx, "GetTour", trace.WithAttributes(
		attribute.String("tour.id", id.String()),
	))
	defer span.End()

	detail, err := s.loadDetail(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrTourNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}
	span.SetStatus(codes.Ok, "tour found")
	return detail, nil
}

func (s *ServiceImpl) ListTours(ctx context.Context, artistID *uuid.UUID, status *models.TourStatus, year *int) (*api.TourListResponse, error) {
	ctx, span := otel.Tracer("TourService").Start(ctx, "ListTours")
	defer span.End()

	if status != nil && !status.Valid() {
		span.SetStatus(codes.Error, "invalid status filter")
		return nil, ErrInvalidStatus
	}

	tours, err := s.repo.ListTours(ctx, artistID, status, year)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	for i := range tours {
		dates, err := s.repo.ListTourDates(ctx, tours[i].ID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to load dates for tour %s: %w", tours[i].ID, err)
		}
		fillDates(&tours[i], dates)
	}

	span.SetAttributes(attribute.Int("tours.count", len(tours)))
	span.SetStatus(codes.Ok, "tours listed")
	return &api.TourListResponse{Tours: tours, TotalCount: len(tours)}, nil
}

func (s *ServiceImpl) UpdateTour(ctx context.Context, id uuid.UUID, req api.UpdateTourRequest) (*models.TourDetail, error) {
	ctx, span := otel.Tracer("TourService").Start(ctx, "UpdateTour", trace.WithAttributes(
		attribute.String("tour.id", id.String()),
	))
	defer span.End()

	detail, err := s.repo.GetTour(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if detail == nil {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrTourNotFound
	}

	tour := detail.Tour
	if req.TourName != nil {
		tour.TourName = *req.TourName
	}
	if req.Year != nil {
		tour.Year = req.Year
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			span.SetStatus(codes.Error, "invalid status")
			return nil, ErrInvalidStatus
		}
		tour.Status = *req.Status
	}
	if req.HasTBDDates != nil {
		tour.HasTBDDates = *req.HasTBDDates
	}
	if req.HasTBDVenues != nil {
		tour.HasTBDVenues = *req.HasTBDVenues
	}
	if req.TotalShowsEstimated != nil {
		tour.TotalShowsEstimated = req.TotalShowsEstimated
	}
	if req.Description != nil {
		tour.Description = req.Description
	}
	if req.AnnouncementDate != nil {
		tour.AnnouncementDate = req.AnnouncementDate
	}
	if req.TourStartDate != nil {
		tour.TourStartDate = req.TourStartDate
	}
	if req.TourEndDate != nil {
		tour.TourEndDate = req.TourEndDate
	}
	if req.Regions != nil {
		tour.Regions = req.Regions
	}

	if err := s.repo.UpdateTour(ctx, tour); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("failed to update tour: %w", err)
	}
	span.SetStatus(codes.Ok, "tour updated")
	return s.loadDetail(ctx, id)
}

func (s *ServiceImpl) DeleteTour(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("TourService").Start(ctx, "DeleteTour", trace.WithAttributes(
		attribute.String("tour.id", id.String()),
	))
	defer span.End()

	if err := s.repo.DeleteTour(ctx, id); err != nil {
		if isNoRows(err) {
			span.SetStatus(codes.Error, "not found")
			return ErrTourNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete tour: %w", err)
	}
	s.logger.InfoContext(ctx, "Deleted tour", slog.String("tourID", id.String()))
	span.SetStatus(codes.Ok, "tour deleted")
	return nil
}

func (s *ServiceImpl) AddTourDate(ctx context.Context, tourID uuid.UUID, req api.CreateTourDateRequest) (*models.TourDate, error) {
	ctx, span := otel.Tracer("TourService").Start(ctx, "AddTourDate", trace.WithAttributes(
		attribute.String("tour.id", tourID.String()),
		attribute.String("date.city", req.City),
	))
	defer span.End()

	detail, err := s.repo.GetTour(ctx, tourID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	if detail == nil {
		span.SetStatus(codes.Error, "tour not found")
		return nil, ErrTourNotFound
	}

	date := newTourDate(req)
	date.TourID = tourID
	date.IsAddedDate = true

	id, err := s.repo.AddTourDate(ctx, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to add tour date: %w", err)
	}
	if err := s.repo.AdjustShowsAnnounced(ctx, tourID, 1); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.refreshSeoulKickoff(ctx, tourID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Added tour date",
		slog.String("tourID", tourID.String()),
		slog.String("dateID", id.String()),
		slog.String("city", req.City))
	span.SetStatus(codes.Ok, "tour date added")
	return s.repo.GetTourDate(ctx, id)
}

func (s *ServiceImpl) UpdateTourDate(ctx context.Context, tourID, dateID uuid.UUID, req api.UpdateTourDateRequest) (*models.TourDate, error) {
	ctx, span := otel.Tracer("TourService").Start(ctx, "UpdateTourDate", trace.WithAttributes(
		attribute.String("tour.id", tourID.String()),
		attribute.String("date.id", dateID.String()),
	))
	defer span.End()

	date, err := s.repo.GetTourDate(ctx, dateID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load tour date: %w", err)
	}
	if date == nil || date.TourID != tourID {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrDateNotFound
	}

	if req.City != nil {
		date.City = *req.City
	}
	if req.Venue != nil {
		date.Venue = req.Venue
	}
	if req.Country != nil {
		date.Country = *req.Country
	}
	if req.Region != nil {
		date.Region = req.Region
	}
	if req.Date != nil {
		date.Date = req.Date
	}
	if req.EndDate != nil {
		date.EndDate = req.EndDate
	}
	if req.ShowTime != nil {
		date.ShowTime = req.ShowTime
	}
	if req.Timezone != nil {
		date.Timezone = req.Timezone
	}
	if req.IsEncore != nil {
		date.IsEncore = *req.IsEncore
	}
	if req.IsFinale != nil {
		date.IsFinale = *req.IsFinale
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			span.SetStatus(codes.Error, "invalid status")
			return nil, ErrInvalidStatus
		}
		date.Status = *req.Status
	}
	if req.TicketURL != nil {
		date.TicketURL = req.TicketURL
	}
	if req.TicketStatus != nil {
		date.TicketStatus = req.TicketStatus
	}
	if req.OnSaleDate != nil {
		date.OnSaleDate = req.OnSaleDate
	}
	if req.Notes != nil {
		date.Notes = req.Notes
	}
	if req.OriginalDate != nil {
		date.OriginalDate = req.OriginalDate
	}

	if err := s.repo.UpdateTourDate(ctx, *date); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("failed to update tour date: %w", err)
	}
	if err := s.refreshSeoulKickoff(ctx, tourID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "tour date updated")
	return s.repo.GetTourDate(ctx, dateID)
}

func (s *ServiceImpl) DeleteTourDate(ctx context.Context, tourID, dateID uuid.UUID) error {
	ctx, span := otel.Tracer("TourService").Start(ctx, "DeleteTourDate", trace.WithAttributes(
		attribute.String("tour.id", tourID.String()),
		attribute.String("date.id", dateID.String()),
	))
	defer span.End()

	date, err := s.repo.GetTourDate(ctx, dateID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load tour date: %w", err)
	}
	if date == nil || date.TourID != tourID {
		span.SetStatus(codes.Error, "not found")
		return ErrDateNotFound
	}

	if err := s.repo.DeleteTourDate(ctx, dateID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete tour date: %w", err)
	}
	if err := s.repo.AdjustShowsAnnounced(ctx, tourID, -1); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.refreshSeoulKickoff(ctx, tourID); err != nil {
		span.RecordError(err)
		return err
	}
	span.SetStatus(codes.Ok, "tour date deleted")
	return nil
}

func (s *ServiceImpl) loadDetail(ctx context.Context, id uuid.UUID) (*models.TourDetail, error) {
	detail, err := s.repo.GetTour(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	if detail == nil {
		return nil, ErrTourNotFound
	}
	dates, err := s.repo.ListTourDates(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour dates: %w", err)
	}
	fillDates(detail, dates)
	return detail, nil
}

func (s *ServiceImpl) refreshSeoulKickoff(ctx context.Context, tourID uuid.UUID) error {
	dates, err := s.repo.ListTourDates(ctx, tourID)
	if err != nil {
		return fmt.Errorf("failed to load tour dates: %w", err)
	}
	kickoff := detectSeoulKickoff(dates)
	if err := s.repo.SetSeoulKickoff(ctx, tourID, kickoff); err != nil {
		return fmt.Errorf("failed to set kickoff flag: %w", err)
	}
	return nil
}

func newTourDate(req api.CreateTourDateRequest) models.TourDate {
	status := models.DateStatusUpcoming
	return models.TourDate{
		City:           req.City,
		Venue:          req.Venue,
		Country:        req.Country,
		Region:         req.Region,
		Date:           req.Date,
		EndDate:        req.EndDate,
		ShowTime:       req.ShowTime,
		Timezone:       req.Timezone,
		IsSeoulKickoff: req.IsSeoulKickoff,
		IsEncore:       req.IsEncore,
		IsFinale:       req.IsFinale,
		Status:         status,
		TicketURL:      req.TicketURL,
		TicketStatus:   req.TicketStatus,
		OnSaleDate:     req.OnSaleDate,
		Notes:          req.Notes,
	}
}

// fillDates attaches dates to a tour detail in display order and computes
// the upcoming/past counters.
func fillDates(detail *models.TourDetail, dates []models.TourDate) {
	sortDates(dates)
	detail.Dates = dates
	detail.UpcomingCount = 0
	detail.PastCount = 0
	for i := range dates {
		switch {
		case dates[i].IsPast():
			detail.PastCount++
		case !dates[i].IsTBD():
			detail.UpcomingCount++
		}
	}
}

// sortDates orders show dates for display: upcoming shows by date, then TBD
// entries in insertion order, then past shows by date.
func sortDates(dates []models.TourDate) {
	rank := func(d *models.TourDate) int {
		switch {
		case d.IsTBD():
			return 1
		case d.IsPast():
			return 2
		default:
			return 0
		}
	}
	sort.SliceStable(dates, func(i, j int) bool {
		ri, rj := rank(&dates[i]), rank(&dates[j])
		if ri != rj {
			return ri < rj
		}
		if dates[i].Date == nil || dates[j].Date == nil {
			return false
		}
		return dates[i].Date.Before(*dates[j].Date)
	})
}

// detectSeoulKickoff returns the ID of the earliest dated Seoul show that is
// not an encore, or nil when the tour has none.
func detectSeoulKickoff(dates []models.TourDate) *uuid.UUID {
	var best *models.TourDate
	for i := range dates {
		d := &dates[i]
		if !d.IsSeoul() || d.Date == nil || d.IsEncore {
			continue
		}
		if best == nil || d.Date.Before(*best.Date) {
			best = d
		}
	}
	if best == nil {
		return nil
	}
	id := best.ID
	return &id
}

// markSeoulKickoff flags the kickoff show in a slice of not-yet-persisted
// dates. Manually flagged dates win over detection.
func markSeoulKickoff(dates []models.TourDate) {
	for i := range dates {
		if dates[i].IsSeoulKickoff {
			return
		}
	}
	var best = -1
	for i := range dates {
		d := &dates[i]
		if !d.IsSeoul() || d.Date == nil || d.IsEncore {
			continue
		}
		if best == -1 || d.Date.Before(*dates[best].Date) {
			best = i
		}
	}
	if best >= 0 {
		dates[best].IsSeoulKickoff = true
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
