package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/altsang/kpop-concert-tracker/internal/models"
	"github.com/altsang/kpop-concert-tracker/internal/parser"
)

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// --- Artists ---

// CreateArtistRequest is the JSON body for creating an artist.
type CreateArtistRequest struct {
	Name            string           `json:"name"`
	KoreanName      *string          `json:"korean_name,omitempty"`
	TwitterHandle   *string          `json:"twitter_handle,omitempty"`
	OfficialTwitter *string          `json:"official_twitter,omitempty"`
	AgencyTwitter   *string          `json:"agency_twitter,omitempty"`
	Aliases         []string         `json:"aliases,omitempty"`
	GroupType       models.GroupType `json:"group_type,omitempty"`
	MembersCount    *int             `json:"members_count,omitempty"`
	DebutYear       *int             `json:"debut_year,omitempty"`
}

// UpdateArtistRequest carries partial updates; nil fields are left unchanged.
type UpdateArtistRequest struct {
	Name            *string           `json:"name,omitempty"`
	KoreanName      *string           `json:"korean_name,omitempty"`
	TwitterHandle   *string           `json:"twitter_handle,omitempty"`
	OfficialTwitter *string           `json:"official_twitter,omitempty"`
	AgencyTwitter   *string           `json:"agency_twitter,omitempty"`
	IsFavorite      *bool             `json:"is_favorite,omitempty"`
	Aliases         []string          `json:"aliases,omitempty"`
	GroupType       *models.GroupType `json:"group_type,omitempty"`
	MembersCount    *int              `json:"members_count,omitempty"`
	DebutYear       *int              `json:"debut_year,omitempty"`
}

// ArtistListResponse wraps a list of artists with their aggregate counts.
type ArtistListResponse struct {
	Artists    []models.ArtistDetail `json:"artists"`
	TotalCount int                   `json:"total_count"`
}

// --- Tours ---

// CreateTourDateRequest is one show date inside a tour create/add call.
type CreateTourDateRequest struct {
	City           string     `json:"city"`
	Venue          *string    `json:"venue,omitempty"`
	Country        string     `json:"country"`
	Region         *string    `json:"region,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	ShowTime       *string    `json:"show_time,omitempty"`
	Timezone       *string    `json:"timezone,omitempty"`
	IsSeoulKickoff bool       `json:"is_seoul_kickoff,omitempty"`
	IsEncore       bool       `json:"is_encore,omitempty"`
	IsFinale       bool       `json:"is_finale,omitempty"`
	TicketURL      *string    `json:"ticket_url,omitempty"`
	TicketStatus   *string    `json:"ticket_status,omitempty"`
	OnSaleDate     *time.Time `json:"on_sale_date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// CreateTourRequest is the JSON body for creating a tour, optionally with
// its initial dates.
type CreateTourRequest struct {
	ArtistID            uuid.UUID               `json:"artist_id"`
	TourName            string                  `json:"tour_name"`
	Year                *int                    `json:"year,omitempty"`
	HasTBDDates         bool                    `json:"has_tbd_dates,omitempty"`
	HasTBDVenues        bool                    `json:"has_tbd_venues,omitempty"`
	TotalShowsEstimated *int                    `json:"total_shows_estimated,omitempty"`
	Description         *string                 `json:"description,omitempty"`
	AnnouncementDate    *time.Time              `json:"announcement_date,omitempty"`
	TourStartDate       *time.Time              `json:"tour_start_date,omitempty"`
	TourEndDate         *time.Time              `json:"tour_end_date,omitempty"`
	Regions             []string                `json:"regions,omitempty"`
	Dates               []CreateTourDateRequest `json:"dates,omitempty"`
}

// UpdateTourRequest carries partial updates; nil fields are left unchanged.
type UpdateTourRequest struct {
	TourName            *string            `json:"tour_name,omitempty"`
	Year                *int               `json:"year,omitempty"`
	Status              *models.TourStatus `json:"status,omitempty"`
	HasTBDDates         *bool              `json:"has_tbd_dates,omitempty"`
	HasTBDVenues        *bool              `json:"has_tbd_venues,omitempty"`
	TotalShowsEstimated *int               `json:"total_shows_estimated,omitempty"`
	Description         *string            `json:"description,omitempty"`
	AnnouncementDate    *time.Time         `json:"announcement_date,omitempty"`
	TourStartDate       *time.Time         `json:"tour_start_date,omitempty"`
	TourEndDate         *time.Time         `json:"tour_end_date,omitempty"`
	Regions             []string           `json:"regions,omitempty"`
}

// UpdateTourDateRequest carries partial updates to one show date.
type UpdateTourDateRequest struct {
	City           *string            `json:"city,omitempty"`
	Venue          *string            `json:"venue,omitempty"`
	Country        *string            `json:"country,omitempty"`
	Region         *string            `json:"region,omitempty"`
	Date           *time.Time         `json:"date,omitempty"`
	EndDate        *time.Time         `json:"end_date,omitempty"`
	ShowTime       *string            `json:"show_time,omitempty"`
	Timezone       *string            `json:"timezone,omitempty"`
	IsSeoulKickoff *bool              `json:"is_seoul_kickoff,omitempty"`
	IsEncore       *bool              `json:"is_encore,omitempty"`
	IsFinale       *bool              `json:"is_finale,omitempty"`
	Status         *models.DateStatus `json:"status,omitempty"`
	TicketURL      *string            `json:"ticket_url,omitempty"`
	TicketStatus   *string            `json:"ticket_status,omitempty"`
	OnSaleDate     *time.Time         `json:"on_sale_date,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	OriginalDate   *time.Time         `json:"original_date,omitempty"`
}

// TourListResponse wraps a list of tours.
type TourListResponse struct {
	Tours      []models.TourDetail `json:"tours"`
	TotalCount int                 `json:"total_count"`
}

// --- Concerts ---

// ConcertFilter collects the query parameters of the concert listing.
type ConcertFilter struct {
	ArtistIDs   []uuid.UUID
	Cities      []string
	Countries   []string
	DateFrom    *time.Time
	DateTo      *time.Time
	IncludePast bool
	IncludeTBD  bool
	SeoulOnly   bool
	EncoreOnly  bool
	SortBy      string // date, artist, city
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}

// ConcertDisplayItem flattens a show date with its tour and artist for
// dashboard views.
type ConcertDisplayItem struct {
	TourDateID       uuid.UUID         `json:"tour_date_id"`
	ArtistID         uuid.UUID         `json:"artist_id"`
	ArtistName       string            `json:"artist_name"`
	ArtistKoreanName *string           `json:"artist_korean_name"`
	TourID           uuid.UUID         `json:"tour_id"`
	TourName         string            `json:"tour_name"`
	City             string            `json:"city"`
	Venue            *string           `json:"venue"`
	Country          string            `json:"country"`
	Region           *string           `json:"region"`
	ConcertDate      *time.Time        `json:"concert_date"`
	EndDate          *time.Time        `json:"end_date"`
	DateDisplay      string            `json:"date_display"`
	IsPast           bool              `json:"is_past"`
	IsToday          bool              `json:"is_today"`
	IsSeoulKickoff   bool              `json:"is_seoul_kickoff"`
	IsEncore         bool              `json:"is_encore"`
	IsFinale         bool              `json:"is_finale"`
	HasTBDInTour     bool              `json:"has_tbd_in_tour"`
	DaysUntil        *int              `json:"days_until"`
	Status           models.DateStatus `json:"status"`
	TicketURL        *string           `json:"ticket_url"`
	TicketStatus     *string           `json:"ticket_status"`
}

// ConcertListResponse is a paginated set of concert display items.
type ConcertListResponse struct {
	Concerts   []ConcertDisplayItem `json:"concerts"`
	TotalCount int                  `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

// DashboardSummary aggregates headline numbers for the landing page.
type DashboardSummary struct {
	TotalArtistsTracked   int                 `json:"total_artists_tracked"`
	TotalUpcomingConcerts int                 `json:"total_upcoming_concerts"`
	TotalPastConcerts     int                 `json:"total_past_concerts"`
	ConcertsThisMonth     int                 `json:"concerts_this_month"`
	ConcertsWithTBD       int                 `json:"concerts_with_tbd"`
	NextConcert           *ConcertDisplayItem `json:"next_concert"`
	SeoulShowsUpcoming    int                 `json:"seoul_shows_upcoming"`
	EncoreShowsUpcoming   int                 `json:"encore_shows_upcoming"`
}

// --- Twitter / announcements ---

// TwitterStatusResponse reports client connectivity and rate budget.
type TwitterStatusResponse struct {
	Connected          bool `json:"connected"`
	RateLimitRemaining int  `json:"rate_limit_remaining"`
	RateLimitMax       int  `json:"rate_limit_max"`
	CanRequest         bool `json:"can_request"`
}

// RefreshRequest asks for a feed refresh, optionally limited to specific
// artists.
type RefreshRequest struct {
	ArtistIDs []uuid.UUID `json:"artist_ids,omitempty"`
	Force     bool        `json:"force,omitempty"`
}

// RefreshSummary reports the outcome of one refresh run.
type RefreshSummary struct {
	ArtistsProcessed      int      `json:"artists_processed"`
	TotalNewAnnouncements int      `json:"total_new_announcements"`
	Errors                []string `json:"errors"`
}

// AnnouncementListResponse wraps a page of announcements.
type AnnouncementListResponse struct {
	Announcements []models.AnnouncementDetail `json:"announcements"`
	TotalCount    int                         `json:"total_count"`
}

// ParseTestRequest carries raw text to run through the parser without
// persisting anything.
type ParseTestRequest struct {
	TweetText string `json:"tweet_text"`
}

// ProcessResult summarizes one announcement-processing run.
type ProcessResult struct {
	AnnouncementID uuid.UUID `json:"announcement_id"`
	Confidence     float64   `json:"confidence"`
	DatesFound     int       `json:"dates_found"`
	LocationsFound int       `json:"locations_found"`
	TourName       *string   `json:"tour_name"`
}

// ParseTestResponse mirrors the parser output for the test endpoint.
type ParseTestResponse = parser.ParseResult
