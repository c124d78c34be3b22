package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupType classifies an artist entry.
type GroupType string

const (
	GroupTypeGroup   GroupType = "group"
	GroupTypeSolo    GroupType = "solo"
	GroupTypeSubunit GroupType = "subunit"
)

// Artist represents a K-pop group or solo artist being tracked.
type Artist struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	KoreanName      *string   `json:"korean_name" db:"korean_name"`
	TwitterHandle   *string   `json:"twitter_handle" db:"twitter_handle"`
	OfficialTwitter *string   `json:"official_twitter" db:"official_twitter"`
	AgencyTwitter   *string   `json:"agency_twitter" db:"agency_twitter"`
	IsFavorite      bool      `json:"is_favorite" db:"is_favorite"`
	Aliases         []string  `json:"aliases" db:"aliases"`
	GroupType       GroupType `json:"group_type" db:"group_type"`
	MembersCount    *int      `json:"members_count" db:"members_count"`
	DebutYear       *int      `json:"debut_year" db:"debut_year"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// AllTwitterHandles returns every handle associated with the artist, in
// personal/official/agency order.
func (a *Artist) AllTwitterHandles() []string {
	var handles []string
	for _, h := range []*string{a.TwitterHandle, a.OfficialTwitter, a.AgencyTwitter} {
		if h != nil && *h != "" {
			handles = append(handles, *h)
		}
	}
	return handles
}

// ArtistDetail is an Artist enriched with aggregate counts for list views.
type ArtistDetail struct {
	Artist
	ToursCount         int `json:"tours_count"`
	UpcomingShowsCount int `json:"upcoming_shows_count"`
}
