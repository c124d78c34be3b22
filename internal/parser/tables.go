package parser

import "regexp"

// monthNames matches abbreviated or full English month names.
const monthNames = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

// datePatterns are tried in order; earlier patterns win when two patterns
// produce the same raw substring.
var datePatterns = []*regexp.Regexp{
	// "March 15, 2025" or "March 15th, 2025"
	regexp.MustCompile(`(?i)\b` + monthNames + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s*\d{4}`),
	// "March 15-16, 2025"
	regexp.MustCompile(`(?i)\b` + monthNames + `\s+\d{1,2}(?:\s*[-&]\s*\d{1,2})?,?\s*\d{4}`),
	// "15/03/2025" or "03/15/2025"
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}`),
	// "2025-03-15"
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}`),
	// "15 March 2025"
	regexp.MustCompile(`(?i)\b\d{1,2}\s+` + monthNames + `\s+\d{4}`),
}

var (
	isoDateRe       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayRangeRe      = regexp.MustCompile(`(\d{1,2})\s*[-&]\s*(\d{1,2})`)
	dayRangeFirstRe = regexp.MustCompile(`(\d{1,2})\s*[-&]\s*\d{1,2}`)
	ordinalRe       = regexp.MustCompile(`(\d{1,2})(?:st|nd|rd|th)\b`)
)

// venueIndicators are suffix keywords tried in order when hunting for a
// venue phrase.
var venueIndicators = []string{
	"stadium",
	"arena",
	"dome",
	"center",
	"centre",
	"hall",
	"park",
	"garden",
	"coliseum",
	"amphitheatre",
	"amphitheater",
	"forum",
	"pavilion",
}

// venuePatterns holds one compiled pattern per indicator, in indicator order.
var venuePatterns = func() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(venueIndicators))
	for i, indicator := range venueIndicators {
		patterns[i] = regexp.MustCompile(`(?i)[A-Z][A-Za-z\s]+` + indicator)
	}
	return patterns
}()

var seoulKeywords = []string{"seoul", "서울", "kspo", "gocheok", "jamsil", "olympic park"}

var encoreKeywords = []string{
	"encore",
	"additional",
	"added dates",
	"added shows",
	"extra dates",
	"final",
	"last show",
	"grand finale",
}

// tbdPatterns run against lowercased text.
var tbdPatterns = []*regexp.Regexp{
	regexp.MustCompile(`more\s+(?:dates|cities|shows).*(?:coming|soon|tba|tbd)`),
	regexp.MustCompile(`additional.*(?:dates|shows).*(?:announced|coming)`),
	regexp.MustCompile(`dates?\s+to\s+be\s+(?:announced|determined)`),
	regexp.MustCompile(`\+\s*more`),
	regexp.MustCompile(`and\s+more`),
	regexp.MustCompile(`tba`),
	regexp.MustCompile(`tbd`),
}

// tourPatterns are tried in order; the first pattern with a match anywhere in
// the text wins and only its first match is taken.
var tourPatterns = []*regexp.Regexp{
	// "BORN PINK WORLD TOUR"
	regexp.MustCompile(`(?i)([A-Z][A-Z\s\d]+(?:TOUR|WORLD TOUR|CONCERT))`),
	// Quoted tour names
	regexp.MustCompile(`(?i)['"]([^'"]+(?:tour|concert))['"]`),
	// "Name Tour 2025"
	regexp.MustCompile(`(?i)(\w+\s+(?:TOUR|Tour)\s*\d*)`),
}

var relevanceKeywords = []string{
	"tour",
	"concert",
	"tickets",
	"live",
	"show",
	"stadium",
	"arena",
	"dates",
}

// KnownCity maps a lowercase city keyword to its canonical city, country and
// continental region. Lookup order is declaration order, so the table is a
// slice rather than a map.
type KnownCity struct {
	Keyword string
	City    string
	Country string
	Region  string
}

// knownCities covers the cities that show up on nearly every K-pop tour
// routing. Never mutated at runtime.
var knownCities = []KnownCity{
	{"seoul", "Seoul", "South Korea", "Asia"},
	{"busan", "Busan", "South Korea", "Asia"},
	{"tokyo", "Tokyo", "Japan", "Asia"},
	{"osaka", "Osaka", "Japan", "Asia"},
	{"bangkok", "Bangkok", "Thailand", "Asia"},
	{"singapore", "Singapore", "Singapore", "Asia"},
	{"jakarta", "Jakarta", "Indonesia", "Asia"},
	{"manila", "Manila", "Philippines", "Asia"},
	{"taipei", "Taipei", "Taiwan", "Asia"},
	{"hong kong", "Hong Kong", "Hong Kong", "Asia"},
	{"los angeles", "Los Angeles", "USA", "North America"},
	{"new york", "New York", "USA", "North America"},
	{"chicago", "Chicago", "USA", "North America"},
	{"dallas", "Dallas", "USA", "North America"},
	{"atlanta", "Atlanta", "USA", "North America"},
	{"san francisco", "San Francisco", "USA", "North America"},
	{"seattle", "Seattle", "USA", "North America"},
	{"toronto", "Toronto", "Canada", "North America"},
	{"vancouver", "Vancouver", "Canada", "North America"},
	{"london", "London", "UK", "Europe"},
	{"paris", "Paris", "France", "Europe"},
	{"berlin", "Berlin", "Germany", "Europe"},
	{"amsterdam", "Amsterdam", "Netherlands", "Europe"},
	{"sydney", "Sydney", "Australia", "Oceania"},
	{"melbourne", "Melbourne", "Australia", "Oceania"},
}
