package models

import (
	"time"

	"github.com/google/uuid"
)

// TourStatus tracks a tour through its announcement lifecycle.
type TourStatus string

const (
	TourStatusAnnounced TourStatus = "announced" // announced, dates may be partial
	TourStatusPartial   TourStatus = "partial"   // some dates announced, more TBD
	TourStatusComplete  TourStatus = "complete"  // all dates announced
	TourStatusOngoing   TourStatus = "ongoing"   // currently happening
	TourStatusCompleted TourStatus = "completed" // finished
	TourStatusCancelled TourStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TourStatus) Valid() bool {
	switch s {
	case TourStatusAnnounced, TourStatusPartial, TourStatusComplete,
		TourStatusOngoing, TourStatusCompleted, TourStatusCancelled:
		return true
	}
	return false
}

// Tour represents a concert tour belonging to an artist.
type Tour struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	ArtistID            uuid.UUID  `json:"artist_id" db:"artist_id"`
	TourName            string     `json:"tour_name" db:"tour_name"`
	Year                *int       `json:"year" db:"year"`
	Status              TourStatus `json:"status" db:"status"`
	HasTBDDates         bool       `json:"has_tbd_dates" db:"has_tbd_dates"`
	HasTBDVenues        bool       `json:"has_tbd_venues" db:"has_tbd_venues"`
	TotalShowsAnnounced int        `json:"total_shows_announced" db:"total_shows_announced"`
	TotalShowsEstimated *int       `json:"total_shows_estimated" db:"total_shows_estimated"`
	Description         *string    `json:"description" db:"description"`
	AnnouncementDate    *time.Time `json:"announcement_date" db:"announcement_date"`
	TourStartDate       *time.Time `json:"tour_start_date" db:"tour_start_date"`
	TourEndDate         *time.Time `json:"tour_end_date" db:"tour_end_date"`
	Regions             []string   `json:"regions" db:"regions"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// TourDetail is a Tour joined with its artist name and dates for API views.
type TourDetail struct {
	Tour
	ArtistName    string     `json:"artist_name"`
	Dates         []TourDate `json:"dates"`
	UpcomingCount int        `json:"upcoming_count"`
	PastCount     int        `json:"past_count"`
}
