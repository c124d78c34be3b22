package announcement

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dghubble/go-twitter/twitter"
	"github.com/dghubble/oauth1"
)

// Tweet is the transport-independent view of one fetched status.
type Tweet struct {
	TweetID      string
	Text         string
	TweetedAt    time.Time
	AuthorHandle string
	AuthorName   string
	RetweetCount int
	LikeCount    int
	IsOfficial   bool
}

// SearchClient abstracts the search transport so the service can be tested
// without network access.
type SearchClient interface {
	IsConfigured() bool
	SearchTweets(ctx context.Context, query string, maxResults int, sinceID string) ([]Tweet, error)
}

var _ SearchClient = (*TwitterClient)(nil)

// TwitterClient wraps the v1.1 search API behind the shared rate limiter.
type TwitterClient struct {
	logger  *slog.Logger
	client  *twitter.Client
	limiter *RateLimiter
}

// NewTwitterClient builds a client from environment credentials. With
// incomplete credentials the client stays unconfigured and every search
// returns empty results, so the rest of the app keeps working offline.
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterClient(limiter *RateLimiter, logger *slog.Logger) *TwitterClient {
	tc := &TwitterClient{logger: logger, limiter: limiter}

	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		logger.Warn("Twitter credentials not configured, search disabled")
		return tc
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	tc.client = twitter.NewClient(httpClient)
	logger.Info("Twitter client initialized")
	return tc
}

func (c *TwitterClient) IsConfigured() bool {
	return c.client != nil
}

// SearchTweets runs one recent-search call. It blocks on the rate limiter
// before the request and records the request afterwards.
func (c *TwitterClient) SearchTweets(ctx context.Context, query string, maxResults int, sinceID string) ([]Tweet, error) {
	if !c.IsConfigured() {
		c.logger.WarnContext(ctx, "Twitter search skipped, client not configured")
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := &twitter.SearchTweetParams{
		Query:      query,
		Count:      min(maxResults, 100),
		ResultType: "recent",
		TweetMode:  "extended",
	}
	if sinceID != "" {
		if id, err := strconv.ParseInt(sinceID, 10, 64); err == nil {
			params.SinceID = id
		}
	}

	search, _, err := c.client.Search.Tweets(params)
	c.limiter.Record()
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	tweets := make([]Tweet, 0, len(search.Statuses))
	for i := range search.Statuses {
		st := &search.Statuses[i]
		text := st.FullText
		if text == "" {
			text = st.Text
		}
		t := Tweet{
			TweetID:      st.IDStr,
			Text:         text,
			RetweetCount: st.RetweetCount,
			LikeCount:    st.FavoriteCount,
		}
		if createdAt, err := st.CreatedAtTime(); err == nil {
			t.TweetedAt = createdAt
		}
		if st.User != nil {
			t.AuthorHandle = "@" + st.User.ScreenName
			t.AuthorName = st.User.Name
		}
		tweets = append(tweets, t)
	}
	return tweets, nil
}
