// Package parser extracts structured concert information from free-text
// announcement messages. It is pure and synchronous: the only shared state is
// a set of read-only keyword tables, so a single Parser is safe for
// concurrent use. Every internal failure degrades into an absent field rather
// than an error; the confidence score tells the caller how much of the text
// was understood.
package parser

import (
	"regexp"
	"strings"
	"time"
)

// RawDate is one date fragment pulled out of the text. Date is nil when the
// fragment could not be resolved to a calendar date; EndDate is set only for
// multi-day ranges and always shares Date's month and year.
type RawDate struct {
	RawText string     `json:"raw_text"`
	Date    *time.Time `json:"date"`
	EndDate *time.Time `json:"end_date,omitempty"`
	IsTBD   bool       `json:"is_tbd"`
}

// RawLocation is a candidate venue/city pairing. City is "Unknown" when a
// venue phrase matched without any known city keyword.
type RawLocation struct {
	City    string  `json:"city"`
	Venue   *string `json:"venue,omitempty"`
	Country *string `json:"country,omitempty"`
	Region  *string `json:"region,omitempty"`
}

// ParseResult is the full output of one parse. It is constructed fresh per
// call and not mutated afterwards.
type ParseResult struct {
	Dates          []RawDate     `json:"dates"`
	Locations      []RawLocation `json:"locations"`
	TourName       *string       `json:"tour_name"`
	IsSeoulRelated bool          `json:"is_seoul_related"`
	IsEncore       bool          `json:"is_encore"`
	HasTBD         bool          `json:"has_tbd"`
	Confidence     float64       `json:"confidence"`
	RawText        string        `json:"raw_text"`
}

// Parser extracts concert information from announcement text.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse runs every extraction pass over the text and scores the result. It
// never fails: malformed input simply yields fewer extracted fields and a
// lower confidence.
func (p *Parser) Parse(text string) ParseResult {
	result := ParseResult{RawText: text}
	textLower := strings.ToLower(text)

	result.Dates = extractDates(text)
	result.Locations = extractLocations(text)
	result.TourName = extractTourName(text)
	result.IsSeoulRelated = containsAny(textLower, seoulKeywords)
	result.IsEncore = containsAny(textLower, encoreKeywords)
	result.HasTBD = matchesAny(textLower, tbdPatterns)
	result.Confidence = scoreConfidence(result)

	return result
}

// IsLikelyRelevant is a cheap prefilter for deciding whether a message is
// worth a full parse.
func (p *Parser) IsLikelyRelevant(text string) bool {
	return containsAny(strings.ToLower(text), relevanceKeywords)
}

func containsAny(textLower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(textLower, kw) {
			return true
		}
	}
	return false
}

func matchesAny(textLower string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(textLower) {
			return true
		}
	}
	return false
}

// extractTourName tries each tour pattern in order and returns the first
// capture of the first pattern that matches.
func extractTourName(text string) *string {
	for _, pattern := range tourPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			return &name
		}
	}
	return nil
}

// scoreConfidence applies the fixed additive table: dates and locations are
// worth 0.3 each, a tour name 0.2, venue and country presence 0.1 each.
func scoreConfidence(result ParseResult) float64 {
	score := 0.0

	if len(result.Dates) > 0 {
		score += 0.3
	}
	if len(result.Locations) > 0 {
		score += 0.3
	}
	if result.TourName != nil {
		score += 0.2
	}
	for _, loc := range result.Locations {
		if loc.Venue != nil {
			score += 0.1
			break
		}
	}
	for _, loc := range result.Locations {
		if loc.Country != nil {
			score += 0.1
			break
		}
	}

	return min(1.0, score)
}
