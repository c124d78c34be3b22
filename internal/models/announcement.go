package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a raw social-feed message captured for an artist, plus the
// parsing state attached to it once processed.
type Announcement struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	ArtistID          *uuid.UUID `json:"artist_id" db:"artist_id"`
	TourID            *uuid.UUID `json:"tour_id" db:"tour_id"`
	TweetID           string     `json:"tweet_id" db:"tweet_id"`
	TweetText         string     `json:"tweet_text" db:"tweet_text"`
	TweetURL          *string    `json:"tweet_url" db:"tweet_url"`
	AuthorHandle      string     `json:"author_handle" db:"author_handle"`
	AuthorName        *string    `json:"author_name" db:"author_name"`
	TweetedAt         time.Time  `json:"tweeted_at" db:"tweeted_at"`
	IsOfficial        bool       `json:"is_official" db:"is_official"`
	IsProcessed       bool       `json:"is_processed" db:"is_processed"`
	IsRelevant        bool       `json:"is_relevant" db:"is_relevant"`
	ExtractedData     []byte     `json:"extracted_data,omitempty" db:"extracted_data"`
	ParsingConfidence *float64   `json:"parsing_confidence" db:"parsing_confidence"`
	MediaURLs         []string   `json:"media_urls" db:"media_urls"`
	RetweetCount      int        `json:"retweet_count" db:"retweet_count"`
	LikeCount         int        `json:"like_count" db:"like_count"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// AnnouncementDetail joins an announcement with its artist name for list
// views.
type AnnouncementDetail struct {
	Announcement
	ArtistName *string `json:"artist_name"`
}
