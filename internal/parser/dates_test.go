package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestExtractDatesSingleFormats(t *testing.T) {
	tests := []struct {
		name string
		text string
		raw  string
		want time.Time
	}{
		{"month day year", "See you March 15, 2025 in Seoul", "March 15, 2025", d(2025, time.March, 15)},
		{"ordinal day", "March 15th, 2025", "March 15th, 2025", d(2025, time.March, 15)},
		{"abbreviated month", "Tickets Mar 15, 2025", "Mar 15, 2025", d(2025, time.March, 15)},
		{"slash date", "On sale 03/15/2025", "03/15/2025", d(2025, time.March, 15)},
		{"iso date", "Doors open 2025-03-15", "2025-03-15", d(2025, time.March, 15)},
		{"day month year", "Live on 15 March 2025", "15 March 2025", d(2025, time.March, 15)},
		{"lowercase month", "on march 15, 2025", "march 15, 2025", d(2025, time.March, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := extractDates(tt.text)
			require.Len(t, dates, 1)
			assert.Equal(t, tt.raw, dates[0].RawText)
			require.NotNil(t, dates[0].Date)
			assert.Equal(t, tt.want, *dates[0].Date)
			assert.Nil(t, dates[0].EndDate)
			assert.False(t, dates[0].IsTBD)
		})
	}
}

func TestExtractDatesRange(t *testing.T) {
	dates := extractDates("Two nights! March 15-16, 2025")

	require.Len(t, dates, 1)
	assert.Equal(t, "March 15-16, 2025", dates[0].RawText)
	require.NotNil(t, dates[0].Date)
	require.NotNil(t, dates[0].EndDate)
	assert.Equal(t, d(2025, time.March, 15), *dates[0].Date)
	assert.Equal(t, d(2025, time.March, 16), *dates[0].EndDate)
}

func TestExtractDatesAmpersandRange(t *testing.T) {
	dates := extractDates("June 7 & 8, 2025 at Jamsil")

	require.Len(t, dates, 1)
	require.NotNil(t, dates[0].Date)
	require.NotNil(t, dates[0].EndDate)
	assert.Equal(t, d(2025, time.June, 7), *dates[0].Date)
	assert.Equal(t, d(2025, time.June, 8), *dates[0].EndDate)
}

// The range end day only ever replaces the day-of-month: no month or year
// rollover is attempted, so a backwards range like "Jan 30-2" keeps January
// and produces an end date before the start date.
func TestExtractDatesRangeNoRollover(t *testing.T) {
	dates := extractDates("Jan 30-2, 2025")

	require.Len(t, dates, 1)
	assert.Equal(t, d(2025, time.January, 30), *dates[0].Date)
	assert.Equal(t, d(2025, time.January, 2), *dates[0].EndDate)
}

// An end day that does not exist in the start month drops the candidate
// entirely rather than rolling into the next month.
func TestExtractDatesRangeInvalidEndDay(t *testing.T) {
	dates := extractDates("Feb 28-30, 2025")

	assert.Empty(t, dates)
}

func TestExtractDatesMultiple(t *testing.T) {
	dates := extractDates("Seoul March 15, 2025 and Tokyo April 2, 2025")

	require.Len(t, dates, 2)
	assert.Equal(t, d(2025, time.March, 15), *dates[0].Date)
	assert.Equal(t, d(2025, time.April, 2), *dates[1].Date)
}

func TestExtractDatesDedupAcrossPatterns(t *testing.T) {
	// "March 15, 2025" satisfies both month-name patterns but must be
	// reported once, from the first pattern pass.
	dates := extractDates("March 15, 2025")

	require.Len(t, dates, 1)
}

func TestExtractDatesUnparseableDropped(t *testing.T) {
	assert.Empty(t, extractDates("no dates here"))
	assert.Empty(t, extractDates(""))
}
