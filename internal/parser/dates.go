package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// extractDates runs every date pattern over the full text and resolves each
// raw match into a RawDate. A raw substring already produced by an earlier
// pattern is skipped, so pattern order decides which pass owns a fragment.
// Candidates that fail to resolve are dropped silently.
func extractDates(text string) []RawDate {
	var dates []RawDate
	seen := make(map[string]struct{})

	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}

			if parsed, ok := parseDateString(match); ok {
				dates = append(dates, parsed)
			}
		}
	}

	return dates
}

// parseDateString resolves a raw date fragment. A fragment containing a day
// range ("March 15-16, 2025") becomes a start date plus an end date built by
// swapping in the second day number. The end-day swap never rolls the month
// or year forward; an end day that does not exist in the start month drops
// the whole candidate.
func parseDateString(raw string) (RawDate, bool) {
	// An ISO fragment would otherwise trip the day-range detector on its own
	// MM-DD separator.
	if isoDateRe.MatchString(raw) {
		parsed, ok := resolveDate(raw)
		if !ok {
			return RawDate{}, false
		}
		return RawDate{RawText: raw, Date: &parsed}, true
	}

	if rangeMatch := dayRangeRe.FindStringSubmatch(raw); rangeMatch != nil {
		firstOnly := dayRangeFirstRe.ReplaceAllString(raw, "$1")
		start, ok := resolveDate(firstOnly)
		if !ok {
			return RawDate{}, false
		}

		endDay, err := strconv.Atoi(rangeMatch[2])
		if err != nil {
			return RawDate{}, false
		}
		if endDay < 1 || endDay > daysInMonth(start.Year(), start.Month()) {
			return RawDate{}, false
		}
		end := time.Date(start.Year(), start.Month(), endDay, 0, 0, 0, 0, time.UTC)

		return RawDate{RawText: raw, Date: &start, EndDate: &end}, true
	}

	parsed, ok := resolveDate(raw)
	if !ok {
		return RawDate{}, false
	}
	return RawDate{RawText: raw, Date: &parsed}, true
}

// resolveDate turns a textual fragment into a calendar date, tolerating
// ordinal suffixes and loose comma placement. The time-of-day portion is
// discarded.
func resolveDate(raw string) (time.Time, bool) {
	cleaned := ordinalRe.ReplaceAllString(raw, "$1")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseAny(cleaned)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
