package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/models"
)

const openAIRetryAttempts = 3

const (
	generalPrompt = `You classify the sentiment of a product review.
Answer with a JSON object {"label": "positive" | "negative", "score": <confidence between 0 and 1>}.`

	aspectPrompt = `You classify the sentiment a product review expresses about one aspect of the product.
Answer with a JSON object {"label": "positive" | "neutral" | "negative", "score": <confidence between 0 and 1>}.`

	summaryPrompt = `Summarize the following product reviews in one paragraph. Mention what buyers like and what they complain about.`
)

// OpenAIClient uses a chat model as classifier and summarizer.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("[OpenAIClient] missing OPENAI_API_KEY")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

func (o *OpenAIClient) ClassifyGeneral(ctx context.Context, text string) (models.Prediction, error) {
	return o.classify(ctx, generalPrompt, text)
}

func (o *OpenAIClient) ClassifyAspect(ctx context.Context, text, aspect string) (models.Prediction, error) {
	return o.classify(ctx, aspectPrompt, fmt.Sprintf("Aspect: %s\nReview: %s", aspect, text))
}

func (o *OpenAIClient) Summarize(ctx context.Context, texts []string) (string, error) {
	content, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summaryPrompt},
			{Role: openai.ChatMessageRoleUser, Content: strings.Join(texts, "\n")},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

func (o *OpenAIClient) classify(ctx context.Context, prompt, input string) (models.Prediction, error) {
	content, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return models.Prediction{}, err
	}

	var answer models.OpenAIClassification
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return models.Prediction{}, fmt.Errorf("failed to parse model answer %q: %w", content, err)
	}
	return models.Prediction{Label: answer.Label, Score: answer.Score}, nil
}

func (o *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var resp openai.ChatCompletionResponse
	var err error

	for i := 0; i < openAIRetryAttempts; i++ {
		start := time.Now()
		resp, err = o.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("[OpenAIClient] Failed to get a response from OpenAI, retrying...",
			slog.String("error", err.Error()),
			slog.Int("attempt", i+1),
			slog.Duration("elapsed", time.Since(start)))
	}
	if err != nil {
		return "", fmt.Errorf("openai completion failed after %d attempts: %w", openAIRetryAttempts, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
