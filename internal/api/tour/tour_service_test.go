package tour

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/altsang/kpop-concert-tracker/internal/api"
	"github.com/altsang/kpop-concert-tracker/internal/models"
)

// MockTourRepo is a mock implementation of the Repository interface
type MockTourRepo struct {
	mock.Mock
}

func (m *MockTourRepo) ArtistExists(ctx context.Context, artistID uuid.UUID) (bool, error) {
	args := m.Called(ctx, artistID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTourRepo) CreateTourWithDates(ctx context.Context, tour models.Tour, dates []models.TourDate) (uuid.UUID, error) {
	args := m.Called(ctx, tour, dates)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTourRepo) GetTour(ctx context.Context, id uuid.UUID) (*models.TourDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TourDetail), args.Error(1)
}

func (m *MockTourRepo) ListTours(ctx context.Context, artistID *uuid.UUID, status *models.TourStatus, year *int) ([]models.TourDetail, error) {
	args := m.Called(ctx, artistID, status, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TourDetail), args.Error(1)
}

func (m *MockTourRepo) UpdateTour(ctx context.Context, tour models.Tour) error {
	args := m.Called(ctx, tour)
	return args.Error(0)
}

func (m *MockTourRepo) DeleteTour(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTourRepo) ListTourDates(ctx context.Context, tourID uuid.UUID) ([]models.TourDate, error) {
	args := m.Called(ctx, tourID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TourDate), args.Error(1)
}

func (m *MockTourRepo) GetTourDate(ctx context.Context, dateID uuid.UUID) (*models.TourDate, error) {
	args := m.Called(ctx, dateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TourDate), args.Error(1)
}

func (m *MockTourRepo) AddTourDate(ctx context.Context, date models.TourDate) (uuid.UUID, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTourRepo) UpdateTourDate(ctx context.Context, date models.TourDate) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockTourRepo) DeleteTourDate(ctx context.Context, dateID uuid.UUID) error {
	args := m.Called(ctx, dateID)
	return args.Error(0)
}

func (m *MockTourRepo) SetSeoulKickoff(ctx context.Context, tourID uuid.UUID, dateID *uuid.UUID) error {
	args := m.Called(ctx, tourID, dateID)
	return args.Error(0)
}

func (m *MockTourRepo) AdjustShowsAnnounced(ctx context.Context, tourID uuid.UUID, delta int) error {
	args := m.Called(ctx, tourID, delta)
	return args.Error(0)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDetectSeoulKickoff(t *testing.T) {
	seoulFirst := uuid.New()
	seoulSecond := uuid.New()

	t.Run("EarliestSeoulShowWins", func(t *testing.T) {
		dates := []models.TourDate{
			{ID: uuid.New(), City: "Tokyo", Date: datePtr(2030, time.March, 1)},
			{ID: seoulSecond, City: "Seoul", Date: datePtr(2030, time.April, 10)},
			{ID: seoulFirst, City: "Seoul", Date: datePtr(2030, time.March, 5)},
		}
		got := detectSeoulKickoff(dates)
		require.NotNil(t, got)
		assert.Equal(t, seoulFirst, *got)
	})

	t.Run("EncoresSkipped", func(t *testing.T) {
		dates := []models.TourDate{
			{ID: seoulFirst, City: "Seoul", Date: datePtr(2030, time.March, 5), IsEncore: true},
			{ID: seoulSecond, City: "Seoul", Date: datePtr(2030, time.April, 10)},
		}
		got := detectSeoulKickoff(dates)
		require.NotNil(t, got)
		assert.Equal(t, seoulSecond, *got)
	})

	t.Run("TBDSeoulIgnored", func(t *testing.T) {
		dates := []models.TourDate{
			{ID: uuid.New(), City: "Seoul"},
			{ID: uuid.New(), City: "Osaka", Date: datePtr(2030, time.March, 1)},
		}
		assert.Nil(t, detectSeoulKickoff(dates))
	})

	t.Run("HangulCity", func(t *testing.T) {
		id := uuid.New()
		dates := []models.TourDate{
			{ID: id, City: "서울", Date: datePtr(2030, time.May, 1)},
		}
		got := detectSeoulKickoff(dates)
		require.NotNil(t, got)
		assert.Equal(t, id, *got)
	})
}

func TestMarkSeoulKickoff(t *testing.T) {
	t.Run("FlagsEarliestSeoulDate", func(t *testing.T) {
		dates := []models.TourDate{
			{City: "Seoul", Date: datePtr(2030, time.June, 2)},
			{City: "Seoul", Date: datePtr(2030, time.June, 1)},
			{City: "Busan", Date: datePtr(2030, time.May, 1)},
		}
		markSeoulKickoff(dates)
		assert.False(t, dates[0].IsSeoulKickoff)
		assert.True(t, dates[1].IsSeoulKickoff)
	})

	t.Run("ManualFlagWins", func(t *testing.T) {
		dates := []models.TourDate{
			{City: "Seoul", Date: datePtr(2030, time.June, 1)},
			{City: "Seoul", Date: datePtr(2030, time.June, 2), IsSeoulKickoff: true},
		}
		markSeoulKickoff(dates)
		assert.False(t, dates[0].IsSeoulKickoff)
		assert.True(t, dates[1].IsSeoulKickoff)
	})
}

func TestSortDates(t *testing.T) {
	past := datePtr(2020, time.January, 1)
	soon := datePtr(2030, time.January, 1)
	later := datePtr(2030, time.June, 1)

	dates := []models.TourDate{
		{City: "PastCity", Date: past},
		{City: "TBDCity"},
		{City: "LaterCity", Date: later},
		{City: "SoonCity", Date: soon},
	}
	sortDates(dates)

	cities := make([]string, len(dates))
	for i, d := range dates {
		cities[i] = d.City
	}
	assert.Equal(t, []string{"SoonCity", "LaterCity", "TBDCity", "PastCity"}, cities)
}

func TestFillDatesCounts(t *testing.T) {
	detail := &models.TourDetail{}
	fillDates(detail, []models.TourDate{
		{City: "A", Date: datePtr(2030, time.January, 1)},
		{City: "B", Date: datePtr(2020, time.January, 1)},
		{City: "C"},
	})
	assert.Equal(t, 1, detail.UpcomingCount)
	assert.Equal(t, 1, detail.PastCount)
	assert.Len(t, detail.Dates, 3)
}

func TestCreateTour(t *testing.T) {
	logger := slog.Default()

	t.Run("ArtistNotFound", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		artistID := uuid.New()
		mockRepo.On("ArtistExists", mock.Anything, artistID).Return(false, nil)

		_, err := service.CreateTour(ctx, api.CreateTourRequest{ArtistID: artistID, TourName: "X"})
		assert.ErrorIs(t, err, ErrArtistNotFound)
		mockRepo.AssertNotCalled(t, "CreateTourWithDates", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SuccessWithSeoulKickoff", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		artistID := uuid.New()
		tourID := uuid.New()
		req := api.CreateTourRequest{
			ArtistID: artistID,
			TourName: "WORLD TOUR",
			Dates: []api.CreateTourDateRequest{
				{City: "Seoul", Country: "South Korea", Date: datePtr(2030, time.March, 1)},
				{City: "Tokyo", Country: "Japan", Date: datePtr(2030, time.March, 10)},
			},
		}

		mockRepo.On("ArtistExists", mock.Anything, artistID).Return(true, nil)
		mockRepo.On("CreateTourWithDates", mock.Anything,
			mock.MatchedBy(func(tr models.Tour) bool {
				return tr.TotalShowsAnnounced == 2 && tr.Status == models.TourStatusAnnounced
			}),
			mock.MatchedBy(func(dates []models.TourDate) bool {
				return len(dates) == 2 && dates[0].IsSeoulKickoff && !dates[1].IsSeoulKickoff
			}),
		).Return(tourID, nil)
		mockRepo.On("GetTour", mock.Anything, tourID).Return(&models.TourDetail{
			Tour:       models.Tour{ID: tourID, TourName: "WORLD TOUR"},
			ArtistName: "Artist",
		}, nil)
		mockRepo.On("ListTourDates", mock.Anything, tourID).Return([]models.TourDate{}, nil)

		detail, err := service.CreateTour(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "WORLD TOUR", detail.TourName)
		mockRepo.AssertExpectations(t)
	})

	t.Run("TBDDateSetsFlag", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		artistID := uuid.New()
		tourID := uuid.New()
		req := api.CreateTourRequest{
			ArtistID: artistID,
			TourName: "TBD TOUR",
			Dates:    []api.CreateTourDateRequest{{City: "Seoul", Country: "South Korea"}},
		}

		mockRepo.On("ArtistExists", mock.Anything, artistID).Return(true, nil)
		mockRepo.On("CreateTourWithDates", mock.Anything,
			mock.MatchedBy(func(tr models.Tour) bool { return tr.HasTBDDates }),
			mock.Anything,
		).Return(tourID, nil)
		mockRepo.On("GetTour", mock.Anything, tourID).Return(&models.TourDetail{Tour: models.Tour{ID: tourID}}, nil)
		mockRepo.On("ListTourDates", mock.Anything, tourID).Return([]models.TourDate{}, nil)

		_, err := service.CreateTour(ctx, req)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestAddTourDate(t *testing.T) {
	logger := slog.Default()

	t.Run("BumpsCountAndRedetectsKickoff", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		tourID := uuid.New()
		dateID := uuid.New()

		mockRepo.On("GetTour", mock.Anything, tourID).Return(&models.TourDetail{Tour: models.Tour{ID: tourID}}, nil)
		mockRepo.On("AddTourDate", mock.Anything, mock.MatchedBy(func(d models.TourDate) bool {
			return d.IsAddedDate && d.TourID == tourID && d.Status == models.DateStatusUpcoming
		})).Return(dateID, nil)
		mockRepo.On("AdjustShowsAnnounced", mock.Anything, tourID, 1).Return(nil)
		mockRepo.On("ListTourDates", mock.Anything, tourID).Return([]models.TourDate{
			{ID: dateID, TourID: tourID, City: "Seoul", Date: datePtr(2030, time.July, 1)},
		}, nil)
		mockRepo.On("SetSeoulKickoff", mock.Anything, tourID, mock.MatchedBy(func(id *uuid.UUID) bool {
			return id != nil && *id == dateID
		})).Return(nil)
		mockRepo.On("GetTourDate", mock.Anything, dateID).Return(&models.TourDate{ID: dateID, City: "Seoul"}, nil)

		date, err := service.AddTourDate(ctx, tourID, api.CreateTourDateRequest{City: "Seoul", Country: "South Korea", Date: datePtr(2030, time.July, 1)})
		require.NoError(t, err)
		assert.Equal(t, "Seoul", date.City)
		mockRepo.AssertExpectations(t)
	})

	t.Run("TourNotFound", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		tourID := uuid.New()
		mockRepo.On("GetTour", mock.Anything, tourID).Return(nil, nil)

		_, err := service.AddTourDate(ctx, tourID, api.CreateTourDateRequest{City: "Seoul", Country: "South Korea"})
		assert.ErrorIs(t, err, ErrTourNotFound)
	})
}

func TestDeleteTourDate(t *testing.T) {
	logger := slog.Default()

	t.Run("DecrementsCount", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		tourID := uuid.New()
		dateID := uuid.New()

		mockRepo.On("GetTourDate", mock.Anything, dateID).Return(&models.TourDate{ID: dateID, TourID: tourID}, nil)
		mockRepo.On("DeleteTourDate", mock.Anything, dateID).Return(nil)
		mockRepo.On("AdjustShowsAnnounced", mock.Anything, tourID, -1).Return(nil)
		mockRepo.On("ListTourDates", mock.Anything, tourID).Return([]models.TourDate{}, nil)
		mockRepo.On("SetSeoulKickoff", mock.Anything, tourID, (*uuid.UUID)(nil)).Return(nil)

		err := service.DeleteTourDate(ctx, tourID, dateID)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongTour", func(t *testing.T) {
		mockRepo := new(MockTourRepo)
		service := NewServiceImpl(mockRepo, logger)
		ctx := context.Background()

		tourID := uuid.New()
		dateID := uuid.New()
		mockRepo.On("GetTourDate", mock.Anything, dateID).Return(&models.TourDate{ID: dateID, TourID: uuid.New()}, nil)

		err := service.DeleteTourDate(ctx, tourID, dateID)
		assert.ErrorIs(t, err, ErrDateNotFound)
		mockRepo.AssertNotCalled(t, "DeleteTourDate", mock.Anything, mock.Anything)
	})
}

func TestUpdateTourInvalidStatus(t *testing.T) {
	mockRepo := new(MockTourRepo)
	service := NewServiceImpl(mockRepo, slog.Default())
	ctx := context.Background()

	tourID := uuid.New()
	bad := models.TourStatus("nonsense")
	mockRepo.On("GetTour", mock.Anything, tourID).Return(&models.TourDetail{Tour: models.Tour{ID: tourID}}, nil)

	_, err := service.UpdateTour(ctx, tourID, api.UpdateTourRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	mockRepo.AssertNotCalled(t, "UpdateTour", mock.Anything, mock.Anything)
}
