package artist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/models"
)

var (
	ErrArtistNotFound  = errors.New("artist not found")
	ErrDuplicateName   = errors.New("an artist with this name already exists")
	ErrDuplicateHandle = errors.New("an artist with this twitter handle already exists")
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the business operations on artists.
type Service interface {
	CreateArtist(ctx context.Context, req api.CreateArtistRequest) (*models.Artist, error)
	GetArtist(ctx context.Context, id uuid.UUID) (*models.Artist, error)
	ListArtists(ctx context.Context, favoritesOnly bool, search string) (*api.ArtistListResponse, error)
	UpdateArtist(ctx context.Context, id uuid.UUID, req api.UpdateArtistRequest) (*models.Artist, error)
	DeleteArtist(ctx context.Context, id uuid.UUID) error
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

func (s *ServiceImpl) CreateArtist(ctx context.Context, req api.CreateArtistRequest) (*models.Artist, error) {
	ctx, span := otel.Tracer("ArtistService").Start(ctx, "CreateArtist", trace.WithAttributes(
		attribute.String("artist.name", req.Name),
	))
	defer span.End()

	existing, err := s.repo.FindArtistByName(ctx, req.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "name lookup failed")
		return nil, fmt.Errorf("failed to check artist name: %w", err)
	}
	if existing != nil {
		span.SetStatus(codes.Error, "duplicate name")
		return nil, ErrDuplicateName
	}

	if req.TwitterHandle != nil && *req.TwitterHandle != "" {
		existing, err = s.repo.FindArtistByHandle(ctx, *req.TwitterHandle)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "handle lookup failed")
			return nil, fmt.Errorf("failed to check twitter handle: %w", err)
		}
		if existing != nil {
			span.SetStatus(codes.Error, "duplicate handle")
			return nil, ErrDuplicateHandle
		}
	}

	groupType := req.GroupType
	if groupType == "" {
		groupType = models.GroupTypeGroup
	}

	artist := models.Artist{
		Name:            req.Name,
		KoreanName:      req.KoreanName,
		TwitterHandle:   req.TwitterHandle,
		OfficialTwitter: req.OfficialTwitter,
		AgencyTwitter:   req.AgencyTwitter,
		IsFavorite:      true,
		Aliases:         req.Aliases,
		GroupType:       groupType,
		MembersCount:    req.MembersCount,
		DebutYear:       req.DebutYear,
	}

	id, err := s.repo.CreateArtist(ctx, artist)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create artist: %w", err)
	}

	created, err := s.repo.GetArtist(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load created artist: %w", err)
	}
	s.logger.InfoContext(ctx, "Created artist", slog.String("artistID", id.String()), slog.String("name", req.Name))
	span.SetStatus(codes.Ok, "artist created")
	return created, nil
}

func (s *ServiceImpl) GetArtist(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	ctx, span := otel.Tracer("ArtistService").Start(ctx, "GetArtist", trace.WithAttributes(
		attribute.String("artist.id", id.String()),
	))
	defer span.End()

	artist, err := s.repo.GetArtist(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	if artist == nil {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrArtistNotFound
	}
	span.SetStatus(codes.Ok, "artist found")
	return artist, nil
}

func (s *ServiceImpl) ListArtists(ctx context.Context, favoritesOnly bool, search string) (*api.ArtistListResponse, error) {
	ctx, span := otel.Tracer("ArtistService").Start(ctx, "ListArtists", trace.WithAttributes(
		attribute.Bool("filter.favoritesOnly", favoritesOnly),
	))
	defer span.End()

	artists, err := s.repo.ListArtists(ctx, favoritesOnly, search)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	span.SetAttributes(attribute.Int("artists.count", len(artists)))
	span.SetStatus(codes.Ok, "artists listed")
	return &api.ArtistListResponse{Artists: artists, TotalCount: len(artists)}, nil
}

func (s *ServiceImpl) UpdateArtist(ctx context.Context, id uuid.UUID, req api.UpdateArtistRequest) (*models.Artist, error) {
	ctx, span := otel.Tracer("ArtistService").Start(ctx, "UpdateArtist", trace.WithAttributes(
		attribute.String("artist.id", id.String()),
	))
	defer span.End()

	artist, err := s.repo.GetArtist(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load artist: %w", err)
	}
	if artist == nil {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrArtistNotFound
	}

	if req.Name != nil {
		artist.Name = *req.Name
	}
	if req.KoreanName != nil {
		artist.KoreanName = req.KoreanName
	}
	if req.TwitterHandle != nil {
		artist.TwitterHandle = req.TwitterHandle
	}
	if req.OfficialTwitter != nil {
		artist.OfficialTwitter = req.OfficialTwitter
	}
	if req.AgencyTwitter != nil {
		artist.AgencyTwitter = req.AgencyTwitter
	}
	if req.IsFavorite != nil {
		artist.IsFavorite = *req.IsFavorite
	}
	if req.Aliases != nil {
		artist.Aliases = req.Aliases
	}
	if req.GroupType != nil {
		artist.GroupType = *req.GroupType
	}
	if req.MembersCount != nil {
		artist.MembersCount = req.MembersCount
	}
	if req.DebutYear != nil {
		artist.DebutYear = req.DebutYear
	}

	if err := s.repo.UpdateArtist(ctx, *artist); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("failed to update artist: %w", err)
	}

	updated, err := s.repo.GetArtist(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to reload artist: %w", err)
	}
	span.SetStatus(codes.Ok, "artist updated")
	return updated, nil
}

func (s *ServiceImpl) DeleteArtist(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("ArtistService").Start(ctx, "DeleteArtist", trace.WithAttributes(
		attribute.String("artist.id", id.String()),
	))
	defer span.End()

	artist, err := s.repo.GetArtist(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load artist: %w", err)
	}
	if artist == nil {
		span.SetStatus(codes.Error, "not found")
		return ErrArtistNotFound
	}

	if err := s.repo.DeleteArtist(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete artist: %w", err)
	}
	s.logger.InfoContext(ctx, "Deleted artist", slog.String("artistID", id.String()))
	span.SetStatus(codes.Ok, "artist deleted")
	return nil
}
