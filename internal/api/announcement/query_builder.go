package announcement

import (
	"fmt"
	"strings"

	"github.com/altsang/kpop-concert-tracker/internal/models"
)

// maxQueryLength is the recent-search query cap.
const maxQueryLength = 512

var concertKeywords = []string{
	"tour",
	"concert",
	"world tour",
	"dates announced",
	"tickets",
	"live in",
}

var exclusionKeywords = []string{
	"fan meeting",
	"fanmeeting",
	"meet and greet",
	"reality show",
	"album",
	"MV",
	"music video",
}

// SearchQueryBuilder renders search queries for concert announcements.
type SearchQueryBuilder struct{}

// BuildQuery renders the general query for an artist, e.g.
//
//	("BLACKPINK" OR @BLACKPINK OR "블랙핑크") (tour OR concert OR world tour) -is:retweet -"fan meeting" ...
func (SearchQueryBuilder) BuildQuery(artist *models.Artist) string {
	names := []string{fmt.Sprintf("%q", artist.Name)}
	if artist.KoreanName != nil && *artist.KoreanName != "" {
		names = append(names, fmt.Sprintf("%q", *artist.KoreanName))
	}
	if artist.TwitterHandle != nil && *artist.TwitterHandle != "" {
		names = append(names, *artist.TwitterHandle)
	}
	// cap aliases to keep the query under the length limit
	aliases := artist.Aliases
	if len(aliases) > 2 {
		aliases = aliases[:2]
	}
	for _, alias := range aliases {
		names = append(names, fmt.Sprintf("%q", alias))
	}

	nameClause := strings.Join(names, " OR ")
	keywordClause := strings.Join(concertKeywords[:3], " OR ")

	var exclusions []string
	for _, kw := range exclusionKeywords[:3] {
		exclusions = append(exclusions, fmt.Sprintf("-%q", kw))
	}

	query := fmt.Sprintf("(%s) (%s) -is:retweet %s", nameClause, keywordClause, strings.Join(exclusions, " "))
	return truncateQuery(query)
}

// BuildOfficialQuery renders a from:-scoped query over the artist's own
// accounts, or "" when the artist has none.
func (SearchQueryBuilder) BuildOfficialQuery(artist *models.Artist) string {
	handles := artist.AllTwitterHandles()
	if len(handles) == 0 {
		return ""
	}

	froms := make([]string, len(handles))
	for i, h := range handles {
		froms[i] = "from:" + strings.TrimPrefix(h, "@")
	}
	query := fmt.Sprintf("(%s) (%s)", strings.Join(froms, " OR "), strings.Join(concertKeywords[:3], " OR "))
	return truncateQuery(query)
}

func truncateQuery(query string) string {
	if len(query) <= maxQueryLength {
		return query
	}
	runes := []rune(query)
	for len(runes) > 0 && len(string(runes)) > maxQueryLength {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
