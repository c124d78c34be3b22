package announcement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/altsang/kpop-concert-tracker/app/observability/metrics"
	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/models"
	"github.com/altsang/kpop-concert-tracker/internal/parser"
)

var (
	ErrNotConfigured        = errors.New("twitter API not configured")
	ErrAnnouncementNotFound = errors.New("announcement not found")
)

const (
	defaultListLimit  = 50
	maxListLimit      = 100
	officialBatchSize = 50
	refreshFanOut     = 4
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the social-feed operations: fetching, listing, and parsing
// announcements.
type Service interface {
	GetStatus(ctx context.Context) *api.TwitterStatusResponse
	Refresh(ctx context.Context, req api.RefreshRequest) (*api.RefreshSummary, error)
	ListAnnouncements(ctx context.Context, artistID *uuid.UUID, processed *bool, officialOnly bool, limit, offset int) (*api.AnnouncementListResponse, error)
	ParseTest(ctx context.Context, text string) api.ParseTestResponse
	ProcessAnnouncement(ctx context.Context, id uuid.UUID) (*api.ProcessResult, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	client     SearchClient
	limiter    *RateLimiter
	builder    SearchQueryBuilder
	parser     *parser.Parser
	metrics    *metrics.AppMetrics
	maxResults int
}

func NewServiceImpl(repo Repository, client SearchClient, limiter *RateLimiter, appMetrics *metrics.AppMetrics, maxResults int, logger *slog.Logger) *ServiceImpl {
	if maxResults <= 0 {
		maxResults = 100
	}
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		client:     client,
		limiter:    limiter,
		parser:     parser.New(),
		metrics:    appMetrics,
		maxResults: maxResults,
	}
}

func (s *ServiceImpl) GetStatus(ctx context.Context) *api.TwitterStatusResponse {
	_, span := otel.Tracer("AnnouncementService").Start(ctx, "GetStatus")
	defer span.End()

	return &api.TwitterStatusResponse{
		Connected:          s.client.IsConfigured(),
		RateLimitRemaining: s.limiter.Remaining(),
		RateLimitMax:       s.limiter.Max(),
		CanRequest:         s.limiter.CanRequest(),
	}
}

// Refresh fetches new announcements, either for the requested artists or for
// every favorite. Per-artist failures land in the summary instead of
// aborting the run.
func (s *ServiceImpl) Refresh(ctx context.Context, req api.RefreshRequest) (*api.RefreshSummary, error) {
	ctx, span := otel.Tracer("AnnouncementService").Start(ctx, "Refresh")
	defer span.End()

	if !s.client.IsConfigured() {
		span.SetStatus(codes.Error, "client not configured")
		return nil, ErrNotConfigured
	}

	var (
		artists []models.Artist
		err     error
	)
	if len(req.ArtistIDs) > 0 {
		artists, err = s.repo.GetArtistsByIDs(ctx, req.ArtistIDs)
	} else {
		artists, err = s.repo.ListFavoriteArtists(ctx)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "artist lookup failed")
		return nil, fmt.Errorf("failed to load artists: %w", err)
	}

	summary := &api.RefreshSummary{Errors: []string{}}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshFanOut)
	for i := range artists {
		artist := artists[i]
		g.Go(func() error {
			if !req.Force && !s.limiter.CanRequest() {
				mu.Lock()
				summary.Errors = append(summary.Errors, fmt.Sprintf("Rate limit reached, skipped %s", artist.Name))
				mu.Unlock()
				return nil
			}

			created, err := s.fetchForArtist(gctx, &artist)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", artist.Name, err))
				return nil
			}
			summary.ArtistsProcessed++
			summary.TotalNewAnnouncements += created
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Refresh complete",
		slog.Int("artistsProcessed", summary.ArtistsProcessed),
		slog.Int("newAnnouncements", summary.TotalNewAnnouncements),
		slog.Int("errors", len(summary.Errors)))
	span.SetAttributes(attribute.Int("refresh.new_announcements", summary.TotalNewAnnouncements))
	span.SetStatus(codes.Ok, "refresh complete")
	return summary, nil
}

// fetchForArtist searches the feed for one artist and stores the tweets it
// has not seen yet. Returns how many announcements were created.
func (s *ServiceImpl) fetchForArtist(ctx context.Context, artist *models.Artist) (int, error) {
	ctx, span := otel.Tracer("AnnouncementService").Start(ctx, "fetchForArtist")
	defer span.End()

	sinceID, err := s.repo.GetLastTweetID(ctx, artist.ID)
	if err != nil {
		return 0, err
	}

	query := s.builder.BuildQuery(artist)
	s.logger.DebugContext(ctx, "Searching feed",
		slog.String("artist", artist.Name),
		slog.String("query", query))

	tweets, err := s.client.SearchTweets(ctx, query, s.maxResults, sinceID)
	if err != nil {
		return 0, err
	}
	s.metrics.TwitterSearchesTotal.Add(ctx, 1)

	if official := s.builder.BuildOfficialQuery(artist); official != "" {
		officialTweets, err := s.client.SearchTweets(ctx, official, officialBatchSize, sinceID)
		if err != nil {
			return 0, err
		}
		s.metrics.TwitterSearchesTotal.Add(ctx, 1)

		seen := make(map[string]struct{}, len(tweets))
		for _, t := range tweets {
			seen[t.TweetID] = struct{}{}
		}
		for _, t := range officialTweets {
			if _, ok := seen[t.TweetID]; ok {
				continue
			}
			t.IsOfficial = true
			tweets = append(tweets, t)
		}
	}

	officialHandles := make(map[string]struct{})
	for _, h := range artist.AllTwitterHandles() {
		officialHandles[strings.ToLower(h)] = struct{}{}
	}

	created := 0
	for _, t := range tweets {
		exists, err := s.repo.TweetExists(ctx, t.TweetID)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		isOfficial := t.IsOfficial
		if !isOfficial && t.AuthorHandle != "" {
			_, isOfficial = officialHandles[strings.ToLower(t.AuthorHandle)]
		}

		url := fmt.Sprintf("https://twitter.com/i/status/%s", t.TweetID)
		artistID := artist.ID
		a := models.Announcement{
			ArtistID:     &artistID,
			TweetID:      t.TweetID,
			TweetText:    t.Text,
			TweetURL:     &url,
			AuthorHandle: authorHandleOrUnknown(t.AuthorHandle),
			TweetedAt:    t.TweetedAt,
			IsOfficial:   isOfficial,
			IsProcessed:  false,
			IsRelevant:   true,
			RetweetCount: t.RetweetCount,
			LikeCount:    t.LikeCount,
		}
		if t.AuthorName != "" {
			name := t.AuthorName
			a.AuthorName = &name
		}
		if _, err := s.repo.InsertAnnouncement(ctx, a); err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		s.metrics.AnnouncementsFetchedTotal.Add(ctx, int64(created),
			metric.WithAttributes(attribute.String("artist", artist.Name)))
		s.logger.InfoContext(ctx, "Stored new announcements",
			slog.String("artist", artist.Name),
			slog.Int("count", created))
	}
	span.SetAttributes(attribute.Int("announcements.created", created))
	return created, nil
}

func (s *ServiceImpl) ListAnnouncements(ctx context.Context, artistID *uuid.UUID, processed *bool, officialOnly bool, limit, offset int) (*api.AnnouncementListResponse, error) {
	ctx, span := otel.Tracer("AnnouncementService").Start(ctx, "ListAnnouncements")
	defer span.End()

	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	announcements, total, err := s.repo.ListAnnouncements(ctx, artistID, processed, officialOnly, limit, offset)
	if err != nil {
		s.metrics.DbQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	span.SetStatus(codes.Ok, "announcements listed")
	return &api.AnnouncementListResponse{Announcements: announcements, TotalCount: total}, nil
}

// ParseTest runs the parser over raw text without touching storage.
func (s *ServiceImpl) ParseTest(ctx context.Context, text string) api.ParseTestResponse {
	_, span := otel.Tracer("AnnouncementService").Start(ctx, "ParseTest")
	defer span.End()
	return s.parser.Parse(text)
}

// extractedData is the JSON shape persisted on processed announcements.
type extractedData struct {
	Dates          []parser.RawDate     `json:"dates"`
	Locations      []parser.RawLocation `json:"locations"`
	TourName       *string              `json:"tour_name"`
	IsSeoulRelated bool                 `json:"is_seoul_related"`
	IsEncore       bool                 `json:"is_encore"`
	HasTBD         bool                 `json:"has_tbd"`
}

// ProcessAnnouncement parses a stored announcement and persists the result.
// Text that fails the quick relevance check is marked processed and
// irrelevant without a full parse.
func (s *ServiceImpl) ProcessAnnouncement(ctx context.Context, id uuid.UUID) (*api.ProcessResult, error) {
	ctx, span := otel.Tracer("AnnouncementService").Start(ctx, "ProcessAnnouncement", trace.WithAttributes(
		attribute.String("announcement.id", id.String()),
	))
	defer span.End()

	a, err := s.repo.GetAnnouncement(ctx, id)
	if err != nil {
		s.metrics.DbQueryErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load announcement: %w", err)
	}
	if a == nil {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrAnnouncementNotFound
	}

	if !s.parser.IsLikelyRelevant(a.TweetText) {
		if err := s.repo.MarkProcessed(ctx, id, 0, nil, false); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to mark announcement processed: %w", err)
		}
		span.SetStatus(codes.Ok, "announcement irrelevant")
		return &api.ProcessResult{AnnouncementID: id}, nil
	}

	parsed := s.parser.Parse(a.TweetText)

	payload, err := json.Marshal(extractedData{
		Dates:          parsed.Dates,
		Locations:      parsed.Locations,
		TourName:       parsed.TourName,
		IsSeoulRelated: parsed.IsSeoulRelated,
		IsEncore:       parsed.IsEncore,
		HasTBD:         parsed.HasTBD,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to encode parse result: %w", err)
	}

	if err := s.repo.MarkProcessed(ctx, id, parsed.Confidence, payload, true); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, fmt.Errorf("failed to mark announcement processed: %w", err)
	}

	s.metrics.AnnouncementsParsedTotal.Add(ctx, 1)
	s.metrics.ParseConfidenceScore.Record(ctx, parsed.Confidence)

	span.SetAttributes(attribute.Float64("parse.confidence", parsed.Confidence))
	span.SetStatus(codes.Ok, "announcement processed")
	return &api.ProcessResult{
		AnnouncementID: id,
		Confidence:     parsed.Confidence,
		DatesFound:     len(parsed.Dates),
		LocationsFound: len(parsed.Locations),
		TourName:       parsed.TourName,
	}, nil
}

func authorHandleOrUnknown(handle string) string {
	if handle == "" {
		return "unknown"
	}
	return handle
}
