// internal/adapter/twitter/search.go

package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	twitter "github.com/g8rswimmer/go-twitter/v2"

	"tweetmood/internal/config"
	"tweetmood/internal/domain/pipeline"
	"tweetmood/internal/domain/topic"
)

// bearer authorizes requests with an app-only bearer token
type bearer struct {
	token string
}

func (b bearer) Add(req *http.Request) {
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", b.token))
}

// Searcher runs recent searches against the Twitter v2 API
type Searcher struct {
	client     *twitter.Client
	maxResults int
}

// NewSearcher creates a new Searcher
func NewSearcher(cfg config.TwitterConfig, maxResults int) *Searcher {
	return &Searcher{
		client: &twitter.Client{
			Authorizer: bearer{token: cfg.BearerToken},
			Client:     &http.Client{Timeout: cfg.Timeout},
			Host:       cfg.Host,
		},
		maxResults: maxResults,
	}
}

// Search runs one bounded recent search. A response without a data array is
// an error, as is any non-200 status.
func (s *Searcher) Search(ctx context.Context, query string) ([]topic.Tweet, error) {
	opts := twitter.TweetRecentSearchOpts{
		Expansions:  []twitter.Expansion{twitter.ExpansionGeoPlaceID},
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt, twitter.TweetFieldText, twitter.TweetFieldGeo, twitter.TweetFieldLanguage},
		UserFields:  []twitter.UserField{twitter.UserFieldLocation},
		MaxResults:  s.maxResults,
	}

	resp, err := s.client.TweetRecentSearch(ctx, query, opts)
	if err != nil {
		return nil, mapError(err)
	}

	if resp.Raw == nil || resp.Raw.Tweets == nil {
		return nil, fmt.Errorf("%w: search response has no data", pipeline.ErrResponseInvalid)
	}

	tweets := make([]topic.Tweet, 0, len(resp.Raw.Tweets))
	for _, t := range resp.Raw.Tweets {
		if t == nil {
			continue
		}
		tweets = append(tweets, topic.Tweet{ID: t.ID, Text: t.Text})
	}

	return tweets, nil
}

// mapError attaches pipeline sentinels to API errors by status code
func mapError(err error) error {
	status := 0

	var errResp *twitter.ErrorResponse
	var httpErr *twitter.HTTPError
	switch {
	case errors.As(err, &errResp):
		status = errResp.StatusCode
	case errors.As(err, &httpErr):
		status = httpErr.StatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("search: %v: %w", err, pipeline.ErrRateLimited)
	case status >= 400 && status < 500:
		return fmt.Errorf("search: status %d: %v: %w", status, err, pipeline.ErrInvalidInput)
	case status != 0:
		return fmt.Errorf("search: status %d: %w", status, err)
	}

	return fmt.Errorf("search: %w", err)
}
