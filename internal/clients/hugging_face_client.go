package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
	"golang.org/x/time/rate"
)

const summaryMinLength = 100

// HuggingFaceClient talks to the Hugging Face inference API. One client serves
// the general classifier, the aspect (text pair) classifier and the summarizer.
type HuggingFaceClient struct {
	client         *http.Client
	cfg            config.HuggingFaceConfig
	limiter        *rate.Limiter
	initialBackoff time.Duration
}

func NewHuggingFaceClient(cfg config.HuggingFaceConfig) *HuggingFaceClient {
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", cfg.Timeout),
		slog.String("sentiment_model", cfg.SentimentModel),
		slog.String("aspect_model", cfg.AspectModel))

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}

	return &HuggingFaceClient{
		client:         &http.Client{Timeout: cfg.Timeout},
		cfg:            cfg,
		limiter:        rate.NewLimiter(limit, 1),
		initialBackoff: INITIAL_BACKOFF,
	}
}

func (h *HuggingFaceClient) ClassifyGeneral(ctx context.Context, text string) (models.Prediction, error) {
	return h.classify(ctx, h.cfg.SentimentModel, models.ClassificationRequest{Inputs: text})
}

func (h *HuggingFaceClient) ClassifyAspect(ctx context.Context, text, aspect string) (models.Prediction, error) {
	return h.classify(ctx, h.cfg.AspectModel, models.TextPairClassificationRequest{
		Inputs: models.TextPairInput{Text: text, TextPair: aspect},
	})
}

// Summarize joins the reviews one per line and asks the summary model for a
// single narrative.
func (h *HuggingFaceClient) Summarize(ctx context.Context, texts []string) (string, error) {
	slog.Info("[HuggingFaceClient] Requesting summary from summarization model",
		slog.Int("reviews", len(texts)))
	start := time.Now()

	var result models.SummaryResponse
	err := h.postJSON(ctx, h.cfg.SummaryModel, models.SummaryRequest{
		Inputs:     strings.Join(texts, "\n"),
		Parameters: models.SummaryParameters{MinLength: summaryMinLength},
	}, &result)
	if err != nil {
		slog.Error("[HuggingFaceClient] Summary Request Failed",
			slog.Duration("elapsed", time.Since(start)))
		return "", err
	}
	if len(result) == 0 {
		return "", errors.New("summarizer returned no summary")
	}

	slog.Info("[HuggingFaceClient] Summary request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result[0].SummaryText, nil
}

// HealthCheck reports whether the sentiment model endpoint answers without a
// server error.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint(h.cfg.SentimentModel), nil)
	if err != nil {
		return false
	}
	h.setHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

func (h *HuggingFaceClient) classify(ctx context.Context, model string, input any) (models.Prediction, error) {
	var raw json.RawMessage
	if err := h.postJSON(ctx, model, input, &raw); err != nil {
		return models.Prediction{}, err
	}

	scores, err := decodeClassification(raw)
	if err != nil {
		return models.Prediction{}, err
	}

	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return models.Prediction{Label: best.Label, Score: best.Score}, nil
}

// decodeClassification accepts both the nested ([[...]]) and flat ([...])
// shapes the inference API answers text classification with.
func decodeClassification(raw json.RawMessage) ([]models.ClassificationScore, error) {
	var nested [][]models.ClassificationScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []models.ClassificationScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	return nil, fmt.Errorf("unexpected classification response: %s", preview(raw))
}

func (h *HuggingFaceClient) endpoint(model string) string {
	return strings.TrimRight(h.cfg.BaseURL, "/") + "/" + model
}

func (h *HuggingFaceClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", USER_AGENT)
	if h.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIToken)
	}
}

// doWithRetry retries server errors and 429s with doubling backoff. build is
// called per attempt so the request body is fresh every time.
func (h *HuggingFaceClient) doWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.initialBackoff

	for attempt := 0; attempt < MAX_RETRIES; attempt++ {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var req *http.Request
		req, err = build()
		if err != nil {
			return nil, err
		}

		resp, err = h.client.Do(req)
		if err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if attempt == MAX_RETRIES-1 {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	if err == nil {
		err = fmt.Errorf("giving up after %d attempts: %s", MAX_RETRIES, errMsg(nil, resp))
		resp.Body.Close()
	}
	return nil, err
}

// helper function for posting data to the inference API
func (h *HuggingFaceClient) postJSON(ctx context.Context, model string, input any, output any) error {
	endpoint := h.endpoint(model)

	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		h.setHeaders(req)
		return req, nil
	})
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, preview(respBody))
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			slog.String("raw_response", preview(respBody)),
			slog.Int("raw_response_length", len(respBody)))

		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func preview(body []byte) string {
	raw := string(body)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return raw
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
