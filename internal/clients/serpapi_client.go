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
	"regexp"
	"time"

	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
	"golang.org/x/time/rate"
)

const walmartReviewsEngine = "walmart_product_reviews"

var walmartProductID = regexp.MustCompile(`/(\d{10,14})`)

// ExtractWalmartProductID returns the 10 to 14 digit product id that follows
// a slash in a Walmart product or review URL.
func ExtractWalmartProductID(rawURL string) (string, error) {
	match := walmartProductID.FindStringSubmatch(rawURL)
	if match == nil {
		return "", models.NewInputError("no Walmart product id in %q", rawURL)
	}
	return match[1], nil
}

// SerpApiClient pulls Walmart product reviews through SerpApi, following its
// pagination links until enough reviews are collected.
type SerpApiClient struct {
	client         *http.Client
	cfg            config.SerpApiConfig
	limiter        *rate.Limiter
	initialBackoff time.Duration
}

func NewSerpApiClient(cfg config.SerpApiConfig) *SerpApiClient {
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	return &SerpApiClient{
		client:         &http.Client{Timeout: 30 * time.Second},
		cfg:            cfg,
		limiter:        rate.NewLimiter(limit, 1),
		initialBackoff: INITIAL_BACKOFF,
	}
}

func (s *SerpApiClient) ExtractReviews(ctx context.Context, target string, count int, sort models.SortOrder) ([]string, error) {
	if s.cfg.APIKey == "" {
		return nil, errors.New("[SerpApiClient] missing SERPAPI_API_KEY")
	}

	productID, err := ExtractWalmartProductID(target)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("engine", walmartReviewsEngine)
	params.Set("product_id", productID)
	params.Set("sort", string(sort))
	params.Set("api_key", s.cfg.APIKey)
	pageURL := s.cfg.BaseURL + "?" + params.Encode()

	reviews := make([]string, 0, count)
	for page := 1; pageURL != "" && len(reviews) < count; page++ {
		resp, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		for _, r := range resp.Reviews {
			if len(reviews) == count {
				break
			}
			reviews = append(reviews, r.Text)
		}

		slog.Debug("[SerpApiClient] Fetched reviews page",
			slog.Int("page", page),
			slog.Int("page_reviews", len(resp.Reviews)),
			slog.Int("collected", len(reviews)))

		if len(resp.Reviews) == 0 {
			break
		}
		pageURL, err = s.withAPIKey(resp.Pagination.Next)
		if err != nil {
			return nil, err
		}
	}

	slog.Info("[SerpApiClient] Extracted reviews",
		slog.String("product_id", productID),
		slog.Int("count", len(reviews)))
	return reviews, nil
}

// pagination links do not carry the api key
func (s *SerpApiClient) withAPIKey(next string) (string, error) {
	if next == "" {
		return "", nil
	}
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("[SerpApiClient] bad pagination link %q: %w", next, err)
	}
	q := u.Query()
	q.Set("api_key", s.cfg.APIKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *SerpApiClient) fetchPage(ctx context.Context, pageURL string) (*models.SerpApiReviewsResponse, error) {
	backoff := s.initialBackoff

	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, status, err := s.get(ctx, pageURL)
		retryable := err != nil || status == http.StatusTooManyRequests || status >= 500
		if !retryable {
			var resp models.SerpApiReviewsResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("[SerpApiClient] failed to decode response: %w", err)
			}
			if resp.Error != "" {
				return nil, fmt.Errorf("[SerpApiClient] %s", resp.Error)
			}
			if status != http.StatusOK {
				return nil, fmt.Errorf("[SerpApiClient] unexpected status %d: %s", status, preview(body))
			}
			return &resp, nil
		}

		if err == nil {
			err = fmt.Errorf("status code %d", status)
		}
		if attempt == MAX_RETRIES-1 {
			return nil, fmt.Errorf("[SerpApiClient] giving up after %d attempts: %w", MAX_RETRIES, err)
		}

		slog.Warn("[SerpApiClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}
}

func (s *SerpApiClient) get(ctx context.Context, pageURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
