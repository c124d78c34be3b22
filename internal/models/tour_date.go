package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateStatus tracks the state of one show date.
type DateStatus string

const (
	DateStatusUpcoming    DateStatus = "upcoming"
	DateStatusToday       DateStatus = "today"
	DateStatusPast        DateStatus = "past"
	DateStatusCancelled   DateStatus = "cancelled"
	DateStatusPostponed   DateStatus = "postponed"
	DateStatusRescheduled DateStatus = "rescheduled"
)

// Valid reports whether s is one of the known statuses.
func (s DateStatus) Valid() bool {
	switch s {
	case DateStatusUpcoming, DateStatusToday, DateStatusPast,
		DateStatusCancelled, DateStatusPostponed, DateStatusRescheduled:
		return true
	}
	return false
}

// TicketStatus values for a show date.
const (
	TicketStatusOnSale  = "on_sale"
	TicketStatusSoldOut = "sold_out"
	TicketStatusNotYet  = "not_yet"
)

// TourDate is one show within a tour. Date is nil while the date is TBD;
// EndDate is set for multi-day runs at the same venue.
type TourDate struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TourID         uuid.UUID  `json:"tour_id" db:"tour_id"`
	City           string     `json:"city" db:"city"`
	Venue          *string    `json:"venue" db:"venue"`
	Country        string     `json:"country" db:"country"`
	Region         *string    `json:"region" db:"region"`
	Date           *time.Time `json:"date" db:"date"`
	EndDate        *time.Time `json:"end_date" db:"end_date"`
	ShowTime       *string    `json:"show_time" db:"show_time"`
	Timezone       *string    `json:"timezone" db:"timezone"`
	IsSeoulKickoff bool       `json:"is_seoul_kickoff" db:"is_seoul_kickoff"`
	IsEncore       bool       `json:"is_encore" db:"is_encore"`
	IsFinale       bool       `json:"is_finale" db:"is_finale"`
	IsAddedDate    bool       `json:"is_added_date" db:"is_added_date"`
	Status         DateStatus `json:"status" db:"status"`
	TicketURL      *string    `json:"ticket_url" db:"ticket_url"`
	TicketStatus   *string    `json:"ticket_status" db:"ticket_status"`
	OnSaleDate     *time.Time `json:"on_sale_date" db:"on_sale_date"`
	Notes          *string    `json:"notes" db:"notes"`
	OriginalDate   *time.Time `json:"original_date" db:"original_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTBD reports whether the show date is still unannounced.
func (d *TourDate) IsTBD() bool {
	return d.Date == nil
}

// IsPast reports whether the show date has passed. TBD dates are never past.
func (d *TourDate) IsPast() bool {
	if d.Date == nil {
		return false
	}
	return d.Date.Before(today())
}

// IsToday reports whether the show is today.
func (d *TourDate) IsToday() bool {
	if d.Date == nil {
		return false
	}
	return d.Date.Equal(today())
}

// DaysUntil returns the number of days until the show, or nil for TBD or
// past dates.
func (d *TourDate) DaysUntil() *int {
	if d.Date == nil {
		return nil
	}
	days := int(d.Date.Sub(today()).Hours() / 24)
	if days < 0 {
		return nil
	}
	return &days
}

// IsSeoul reports whether the show is in Seoul, in either script.
func (d *TourDate) IsSeoul() bool {
	city := strings.ToLower(d.City)
	return city == "seoul" || city == "서울"
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
