package parser

import "strings"

// extractLocations runs two independent passes: known-city lookups first
// (table declaration order), then venue-phrase discovery for venues not yet
// attached to a city. Known-city hits are never deduplicated against each
// other; the venue-only pass skips a match whose text is already contained in
// a previously collected venue.
func extractLocations(text string) []RawLocation {
	var locations []RawLocation
	textLower := strings.ToLower(text)

	for _, entry := range knownCities {
		if !strings.Contains(textLower, entry.Keyword) {
			continue
		}
		loc := RawLocation{
			City:    entry.City,
			Country: strPtr(entry.Country),
			Region:  strPtr(entry.Region),
		}
		if venue := findVenue(text); venue != "" {
			loc.Venue = strPtr(venue)
		}
		locations = append(locations, loc)
	}

	for _, pattern := range venuePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			venueLower := strings.ToLower(match)
			alreadyFound := false
			for _, loc := range locations {
				if loc.Venue != nil && strings.Contains(strings.ToLower(*loc.Venue), venueLower) {
					alreadyFound = true
					break
				}
			}
			if !alreadyFound {
				locations = append(locations, RawLocation{
					City:  "Unknown",
					Venue: strPtr(strings.TrimSpace(match)),
				})
			}
		}
	}

	return locations
}

// findVenue returns the first venue phrase in the text, trying each venue
// indicator in order and stopping at the first indicator that matches at all.
func findVenue(text string) string {
	for _, pattern := range venuePatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

func strPtr(s string) *string {
	return &s
}
