package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
	"github.com/spacesedan/reviewpulse/internal/sentiment"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const redditPageLimit = 100

// reddit search has no rating, so the rating orders fall back to score
var redditSort = map[models.SortOrder]string{
	models.SortRelevancy:      "relevance",
	models.SortSubmissionDesc: "new",
	models.SortHelpful:        "top",
	models.SortRatingDesc:     "top",
	models.SortRatingAsc:      "comments",
}

// RedditClient searches subreddits for posts about a product and treats each
// post as a review.
type RedditClient struct {
	Config     *clientcredentials.Config
	Client     *http.Client
	apiURL     string
	subreddits []string
	limiter    *rate.Limiter

	initialBackoff time.Duration
	mu             sync.Mutex
}

func NewRedditClient(cfg config.RedditConfig) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	var subreddits []string
	for _, s := range strings.Split(cfg.Subreddits, ",") {
		if s = strings.TrimSpace(s); s != "" {
			subreddits = append(subreddits, s)
		}
	}
	if len(subreddits) == 0 {
		subreddits = []string{"all"}
	}

	return &RedditClient{
		Config:         oauthConf,
		Client:         oauthConf.Client(context.Background()),
		apiURL:         strings.TrimRight(cfg.APIURL, "/"),
		subreddits:     subreddits,
		limiter:        rate.NewLimiter(rate.Every(time.Second), 1), // 60 QPM for oauth apps
		initialBackoff: INITIAL_BACKOFF,
	}
}

func (rc *RedditClient) RefreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.Client = rc.Config.Client(context.Background())
}

func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.Client
}

// ExtractReviews searches every configured subreddit for query and returns up
// to count posts as plain text, title first.
func (rc *RedditClient) ExtractReviews(ctx context.Context, query string, count int, sort models.SortOrder) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewInputError("empty reddit search query")
	}
	redditOrder, ok := redditSort[sort]
	if !ok {
		return nil, models.NewInputError("unsupported sort order %q", sort)
	}

	reviews := make([]string, 0, count)
	for _, subreddit := range rc.subreddits {
		after := ""
		for len(reviews) < count {
			page, err := rc.searchPage(ctx, subreddit, query, redditOrder, after)
			if err != nil {
				return nil, err
			}

			for _, child := range page.Data.Children {
				if len(reviews) == count {
					break
				}
				if text := postText(child.Data); text != "" {
					reviews = append(reviews, text)
				}
			}

			after = page.Data.After
			if after == "" || len(page.Data.Children) == 0 {
				break
			}
		}
		if len(reviews) == count {
			break
		}
	}

	slog.Info("[RedditClient] Extracted posts",
		slog.String("query", query),
		slog.Int("count", len(reviews)))
	return reviews, nil
}

func postText(post models.RedditAPIChildData) string {
	body := sentiment.ConvertMarkdownToText(post.Selftext)
	title := strings.TrimSpace(post.Title)
	switch {
	case body == "":
		return title
	case title == "":
		return body
	default:
		return title + "\n" + body
	}
}

func (rc *RedditClient) searchPage(ctx context.Context, subreddit, query, sort, after string) (*models.RedditAPIResponse, error) {
	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/search", rc.apiURL, subreddit))
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Set("q", query)
	queryParams.Set("sort", sort)
	queryParams.Set("limit", strconv.Itoa(redditPageLimit))
	queryParams.Set("restrict_sr", "true")
	queryParams.Set("type", "link")
	if after != "" {
		queryParams.Set("after", after)
	}
	parsedUrl.RawQuery = queryParams.Encode()

	body, err := rc.getWithRetry(ctx, parsedUrl.String())
	if err != nil {
		return nil, err
	}

	var page models.RedditAPIResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to decode search page: %w", err)
	}
	return &page, nil
}

// getWithRetry refreshes the token once on 401 and backs off on 429 and
// server errors.
func (rc *RedditClient) getWithRetry(ctx context.Context, target string) ([]byte, error) {
	backoff := rc.initialBackoff
	refreshed := false

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		if err := rc.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err := rc.httpClient().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("[RedditClient] Request failed, will retry",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
		} else {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				if readErr != nil {
					return nil, readErr
				}
				return body, nil
			case resp.StatusCode == http.StatusUnauthorized && !refreshed:
				slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
				rc.RefreshClient()
				refreshed = true
				continue
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				slog.Warn("[RedditClient] Retrying request",
					slog.Int("attempt", attempt+1),
					slog.Int("status", resp.StatusCode),
					slog.Duration("backoff", backoff))
			default:
				return nil, fmt.Errorf("[RedditClient] unexpected status %d: %s", resp.StatusCode, preview(body))
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}
	return nil, errors.New("[RedditClient] Max retries reached request failed")
}
