package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"

	"github.com/altsang/kpop-concert-tracker/app/observability/metrics"
	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/api/announcement"
	"github.com/altsang/kpop-concert-tracker/internal/api/artist"
	"github.com/altsang/kpop-concert-tracker/internal/api/concert"
	"github.com/altsang/kpop-concert-tracker/internal/api/dashboard"
	"github.com/altsang/kpop-concert-tracker/internal/api/tour"
	"github.com/altsang/kpop-concert-tracker/internal/models"
	"github.com/altsang/kpop-concert-tracker/internal/router"
)

// E2ETestSuite exercises complete workflows through the HTTP surface with
// in-memory repositories standing in for Postgres.
type E2ETestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
	store  *memStore
}

// memStore is the shared in-memory state behind every repository fake.
type memStore struct {
	mu      sync.Mutex
	artists map[uuid.UUID]models.Artist
	tours   map[uuid.UUID]models.Tour
	dates   map[uuid.UUID]models.TourDate
	order   []uuid.UUID // date insertion order per ListTourDates
}

func newMemStore() *memStore {
	return &memStore{
		artists: make(map[uuid.UUID]models.Artist),
		tours:   make(map[uuid.UUID]models.Tour),
		dates:   make(map[uuid.UUID]models.TourDate),
	}
}

// --- artist repository fake ---

type memArtistRepo struct{ store *memStore }

func (r *memArtistRepo) CreateArtist(ctx context.Context, a models.Artist) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.store.artists[a.ID] = a
	return a.ID, nil
}

func (r *memArtistRepo) GetArtist(ctx context.Context, id uuid.UUID) (*models.Artist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if a, ok := r.store.artists[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *memArtistRepo) FindArtistByName(ctx context.Context, name string) (*models.Artist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.artists {
		if a.Name == name {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memArtistRepo) FindArtistByHandle(ctx context.Context, handle string) (*models.Artist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.artists {
		if a.TwitterHandle != nil && *a.TwitterHandle == handle {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memArtistRepo) ListArtists(ctx context.Context, favoritesOnly bool, search string) ([]models.ArtistDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.ArtistDetail
	for _, a := range r.store.artists {
		if favoritesOnly && !a.IsFavorite {
			continue
		}
		d := models.ArtistDetail{Artist: a}
		for _, t := range r.store.tours {
			if t.ArtistID == a.ID {
				d.ToursCount++
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memArtistRepo) UpdateArtist(ctx context.Context, a models.Artist) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.artists[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.artists[a.ID] = a
	return nil
}

func (r *memArtistRepo) DeleteArtist(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.artists[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.artists, id)
	return nil
}

// --- tour repository fake ---

type memTourRepo struct{ store *memStore }

func (r *memTourRepo) ArtistExists(ctx context.Context, artistID uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.artists[artistID]
	return ok, nil
}

func (r *memTourRepo) CreateTourWithDates(ctx context.Context, t models.Tour, dates []models.TourDate) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.store.tours[t.ID] = t
	for _, d := range dates {
		d.ID = uuid.New()
		d.TourID = t.ID
		r.store.dates[d.ID] = d
		r.store.order = append(r.store.order, d.ID)
	}
	return t.ID, nil
}

func (r *memTourRepo) GetTour(ctx context.Context, id uuid.UUID) (*models.TourDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tours[id]
	if !ok {
		return nil, nil
	}
	detail := models.TourDetail{Tour: t}
	if a, ok := r.store.artists[t.ArtistID]; ok {
		detail.ArtistName = a.Name
	}
	return &detail, nil
}

func (r *memTourRepo) ListTours(ctx context.Context, artistID *uuid.UUID, status *models.TourStatus, year *int) ([]models.TourDetail, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.TourDetail
	for _, t := range r.store.tours {
		if artistID != nil && t.ArtistID != *artistID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		if year != nil && (t.Year == nil || *t.Year != *year) {
			continue
		}
		detail := models.TourDetail{Tour: t}
		if a, ok := r.store.artists[t.ArtistID]; ok {
			detail.ArtistName = a.Name
		}
		out = append(out, detail)
	}
	return out, nil
}

func (r *memTourRepo) UpdateTour(ctx context.Context, t models.Tour) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tours[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.tours[t.ID] = t
	return nil
}

func (r *memTourRepo) DeleteTour(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tours[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.tours, id)
	return nil
}

func (r *memTourRepo) ListTourDates(ctx context.Context, tourID uuid.UUID) ([]models.TourDate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.TourDate
	for _, id := range r.store.order {
		if d, ok := r.store.dates[id]; ok && d.TourID == tourID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memTourRepo) GetTourDate(ctx context.Context, dateID uuid.UUID) (*models.TourDate, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if d, ok := r.store.dates[dateID]; ok {
		return &d, nil
	}
	return nil, nil
}

func (r *memTourRepo) AddTourDate(ctx context.Context, d models.TourDate) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d.ID = uuid.New()
	r.store.dates[d.ID] = d
	r.store.order = append(r.store.order, d.ID)
	return d.ID, nil
}

func (r *memTourRepo) UpdateTourDate(ctx context.Context, d models.TourDate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.dates[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.dates[d.ID] = d
	return nil
}

func (r *memTourRepo) DeleteTourDate(ctx context.Context, dateID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.dates[dateID]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.dates, dateID)
	return nil
}

func (r *memTourRepo) SetSeoulKickoff(ctx context.Context, tourID uuid.UUID, dateID *uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, d := range r.store.dates {
		if d.TourID != tourID {
			continue
		}
		d.IsSeoulKickoff = dateID != nil && id == *dateID
		r.store.dates[id] = d
	}
	return nil
}

func (r *memTourRepo) AdjustShowsAnnounced(ctx context.Context, tourID uuid.UUID, delta int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tours[tourID]
	if !ok {
		return pgx.ErrNoRows
	}
	t.TotalShowsAnnounced += delta
	if t.TotalShowsAnnounced < 0 {
		t.TotalShowsAnnounced = 0
	}
	r.store.tours[tourID] = t
	return nil
}

// --- concert / dashboard repository fakes ---

type memConcertRepo struct{ store *memStore }

func (r *memConcertRepo) displayItems() []api.ConcertDisplayItem {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []api.ConcertDisplayItem
	for _, id := range r.store.order {
		d, ok := r.store.dates[id]
		if !ok {
			continue
		}
		t, ok := r.store.tours[d.TourID]
		if !ok {
			continue
		}
		a, ok := r.store.artists[t.ArtistID]
		if !ok || !a.IsFavorite {
			continue
		}
		out = append(out, api.ConcertDisplayItem{
			TourDateID:     d.ID,
			ArtistID:       a.ID,
			ArtistName:     a.Name,
			TourID:         t.ID,
			TourName:       t.TourName,
			City:           d.City,
			Venue:          d.Venue,
			Country:        d.Country,
			ConcertDate:    d.Date,
			EndDate:        d.EndDate,
			IsSeoulKickoff: d.IsSeoulKickoff,
			IsEncore:       d.IsEncore,
			IsFinale:       d.IsFinale,
			Status:         d.Status,
		})
	}
	return out
}

func (r *memConcertRepo) ListConcerts(ctx context.Context, filter api.ConcertFilter) ([]api.ConcertDisplayItem, int, error) {
	var out []api.ConcertDisplayItem
	now := time.Now().Truncate(24 * time.Hour)
	for _, item := range r.displayItems() {
		if item.ConcertDate == nil && !filter.IncludeTBD {
			continue
		}
		if item.ConcertDate != nil && item.ConcertDate.Before(now) && !filter.IncludePast {
			continue
		}
		out = append(out, item)
	}
	return out, len(out), nil
}

type memDashboardRepo struct{ concerts *memConcertRepo }

func (r *memDashboardRepo) GetSummaryCounts(ctx context.Context) (*api.DashboardSummary, error) {
	summary := &api.DashboardSummary{}
	r.concerts.store.mu.Lock()
	for _, a := range r.concerts.store.artists {
		if a.IsFavorite {
			summary.TotalArtistsTracked++
		}
	}
	r.concerts.store.mu.Unlock()

	now := time.Now()
	for _, item := range r.concerts.displayItems() {
		switch {
		case item.ConcertDate == nil:
			summary.ConcertsWithTBD++
		case item.ConcertDate.Before(now):
			summary.TotalPastConcerts++
		default:
			summary.TotalUpcomingConcerts++
			if item.IsEncore {
				summary.EncoreShowsUpcoming++
			}
		}
	}
	return summary, nil
}

func (r *memDashboardRepo) GetNextConcert(ctx context.Context) (*api.ConcertDisplayItem, error) {
	var next *api.ConcertDisplayItem
	now := time.Now()
	for _, item := range r.concerts.displayItems() {
		if item.ConcertDate == nil || item.ConcertDate.Before(now) {
			continue
		}
		if next == nil || item.ConcertDate.Before(*next.ConcertDate) {
			copied := item
			next = &copied
		}
	}
	return next, nil
}

// --- announcement repository fake ---

type memAnnouncementRepo struct {
	store         *memStore
	mu            sync.Mutex
	announcements map[uuid.UUID]models.Announcement
}

func (r *memAnnouncementRepo) ListFavoriteArtists(ctx context.Context) ([]models.Artist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Artist
	for _, a := range r.store.artists {
		if a.IsFavorite {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnnouncementRepo) GetArtistsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Artist, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Artist
	for _, id := range ids {
		if a, ok := r.store.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAnnouncementRepo) GetLastTweetID(ctx context.Context, artistID uuid.UUID) (string, error) {
	return "", nil
}

func (r *memAnnouncementRepo) TweetExists(ctx context.Context, tweetID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.announcements {
		if a.TweetID == tweetID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAnnouncementRepo) InsertAnnouncement(ctx context.Context, a models.Announcement) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New()
	r.announcements[a.ID] = a
	return a.ID, nil
}

func (r *memAnnouncementRepo) ListAnnouncements(ctx context.Context, artistID *uuid.UUID, processed *bool, officialOnly bool, limit, offset int) ([]models.AnnouncementDetail, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AnnouncementDetail
	for _, a := range r.announcements {
		out = append(out, models.AnnouncementDetail{Announcement: a})
	}
	return out, len(out), nil
}

func (r *memAnnouncementRepo) GetAnnouncement(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.announcements[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *memAnnouncementRepo) MarkProcessed(ctx context.Context, id uuid.UUID, confidence float64, extracted []byte, isRelevant bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.announcements[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.IsProcessed = true
	a.IsRelevant = isRelevant
	a.ExtractedData = extracted
	a.ParsingConfidence = &confidence
	r.announcements[id] = a
	return nil
}

// --- suite setup ---

func (s *E2ETestSuite) SetupSuite() {
	for _, key := range []string{"TWITTER_API_KEY", "TWITTER_API_SECRET", "TWITTER_ACCESS_TOKEN", "TWITTER_ACCESS_SECRET"} {
		os.Unsetenv(key)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics.InitAppMetrics()

	s.store = newMemStore()
	artistRepo := &memArtistRepo{store: s.store}
	tourRepo := &memTourRepo{store: s.store}
	concertRepo := &memConcertRepo{store: s.store}
	dashRepo := &memDashboardRepo{concerts: concertRepo}
	annRepo := &memAnnouncementRepo{store: s.store, announcements: make(map[uuid.UUID]models.Announcement)}

	limiter := announcement.NewRateLimiter(450, 900)
	twitterClient := announcement.NewTwitterClient(limiter, logger)

	cfg := &router.Config{
		ArtistHandler:    artist.NewHandler(artist.NewServiceImpl(artistRepo, logger), logger),
		TourHandler:      tour.NewHandler(tour.NewServiceImpl(tourRepo, logger), logger),
		ConcertHandler:   concert.NewHandler(concert.NewServiceImpl(concertRepo, logger), logger),
		DashboardHandler: dashboard.NewHandler(dashboard.NewServiceImpl(dashRepo, logger), logger),
		AnnouncementHandler: announcement.NewHandler(
			announcement.NewServiceImpl(annRepo, twitterClient, limiter, metrics.Get(), 100, logger), logger),
	}

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Mount("/", router.SetupRouter(cfg))

	s.server = httptest.NewServer(mux)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *E2ETestSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

func (s *E2ETestSuite) request(method, path string, body interface{}) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, data
}

func (s *E2ETestSuite) TestConcertTrackingWorkflow() {
	// 1. Track an artist
	handle := "@BLACKPINK"
	resp, body := s.request(http.MethodPost, "/api/v1/artists", api.CreateArtistRequest{
		Name:          "BLACKPINK",
		TwitterHandle: &handle,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	var created models.Artist
	s.Require().NoError(json.Unmarshal(body, &created))
	s.True(created.IsFavorite)
	s.Equal(models.GroupTypeGroup, created.GroupType)

	// duplicate names are rejected
	resp, _ = s.request(http.MethodPost, "/api/v1/artists", api.CreateArtistRequest{Name: "BLACKPINK"})
	s.Equal(http.StatusConflict, resp.StatusCode)

	// 2. Announce a tour: Tokyo first in the payload, but the Seoul show is
	// the earliest dated one and becomes the kickoff.
	seoulDate := time.Now().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	tokyoDate := seoulDate.AddDate(0, 0, 14)
	resp, body = s.request(http.MethodPost, "/api/v1/tours", api.CreateTourRequest{
		ArtistID: created.ID,
		TourName: "BORN AGAIN WORLD TOUR",
		Dates: []api.CreateTourDateRequest{
			{City: "Tokyo", Country: "Japan", Date: &tokyoDate},
			{City: "Seoul", Country: "South Korea", Date: &seoulDate},
			{City: "Jakarta", Country: "Indonesia"},
		},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	var detail models.TourDetail
	s.Require().NoError(json.Unmarshal(body, &detail))
	s.Equal("BLACKPINK", detail.ArtistName)
	s.Equal(3, detail.TotalShowsAnnounced)
	s.True(detail.HasTBDDates)
	s.Require().Len(detail.Dates, 3)
	// display order: dated shows first, TBD last
	s.Equal("Seoul", detail.Dates[0].City)
	s.True(detail.Dates[0].IsSeoulKickoff)
	s.Equal("Tokyo", detail.Dates[1].City)
	s.Equal("Jakarta", detail.Dates[2].City)

	// 3. An earlier Seoul encore must not steal the kickoff flag
	encoreDate := seoulDate.AddDate(0, 0, -7)
	resp, body = s.request(http.MethodPost, fmt.Sprintf("/api/v1/tours/%s/dates", detail.ID), api.CreateTourDateRequest{
		City:     "Seoul",
		Country:  "South Korea",
		Date:     &encoreDate,
		IsEncore: true,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	var added models.TourDate
	s.Require().NoError(json.Unmarshal(body, &added))
	s.True(added.IsAddedDate)
	s.False(added.IsSeoulKickoff)

	resp, body = s.request(http.MethodGet, fmt.Sprintf("/api/v1/tours/%s", detail.ID), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &detail))
	s.Equal(4, detail.TotalShowsAnnounced)
	for _, d := range detail.Dates {
		if d.IsSeoulKickoff {
			s.False(d.IsEncore)
		}
	}

	// 4. Concert listing shows the favorite's upcoming dates
	resp, body = s.request(http.MethodGet, "/api/v1/concerts", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var concerts api.ConcertListResponse
	s.Require().NoError(json.Unmarshal(body, &concerts))
	s.Equal(4, concerts.TotalCount)
	for _, item := range concerts.Concerts {
		s.Equal("BLACKPINK", item.ArtistName)
		s.NotEmpty(item.DateDisplay)
	}

	// 5. Dashboard summary reflects the same state
	resp, body = s.request(http.MethodGet, "/api/v1/dashboard/summary", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var summary api.DashboardSummary
	s.Require().NoError(json.Unmarshal(body, &summary))
	s.Equal(1, summary.TotalArtistsTracked)
	s.Equal(3, summary.TotalUpcomingConcerts)
	s.Equal(1, summary.ConcertsWithTBD)
	s.Equal(1, summary.EncoreShowsUpcoming)
	s.Require().NotNil(summary.NextConcert)
	s.Equal("Seoul", summary.NextConcert.City)

	// 6. Removing the added date restores the original count
	resp, _ = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/tours/%s/dates/%s", detail.ID, added.ID), nil)
	s.Require().Equal(http.StatusNoContent, resp.StatusCode)

	resp, body = s.request(http.MethodGet, fmt.Sprintf("/api/v1/tours/%s", detail.ID), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body, &detail))
	s.Equal(3, detail.TotalShowsAnnounced)
}

func (s *E2ETestSuite) TestTwitterEndpointsWithoutCredentials() {
	resp, body := s.request(http.MethodGet, "/api/v1/twitter/status", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var status api.TwitterStatusResponse
	s.Require().NoError(json.Unmarshal(body, &status))
	s.False(status.Connected)
	s.True(status.CanRequest)

	resp, _ = s.request(http.MethodPost, "/api/v1/twitter/refresh", api.RefreshRequest{})
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *E2ETestSuite) TestParseTestEndpoint() {
	resp, body := s.request(http.MethodPost, "/api/v1/twitter/parse-test", api.ParseTestRequest{
		TweetText: "TWICE <READY TO BE> WORLD TOUR in Seoul, KSPO Dome, March 15-16, 2030",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result api.ParseTestResponse
	s.Require().NoError(json.Unmarshal(body, &result))
	s.NotEmpty(result.Dates)
	s.True(result.IsSeoulRelated)
	s.Greater(result.Confidence, 0.0)
}

func (s *E2ETestSuite) TestHealthEndpoint() {
	resp, body := s.request(http.MethodGet, "/ping", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("pong", string(body))
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
