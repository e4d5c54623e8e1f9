package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/spacesedan/reviewpulse/config"
	"github.com/spacesedan/reviewpulse/internal/clients"
	"github.com/spacesedan/reviewpulse/internal/clients/kafka_client"
	"github.com/spacesedan/reviewpulse/internal/monitoring"
	"github.com/spacesedan/reviewpulse/internal/processing"
	"github.com/spacesedan/reviewpulse/internal/sentiment"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendVader       = "vader"
	BackendHugot       = "hugot"

	SourceSerpApi = "serpapi"
	SourceReddit  = "reddit"
)

// App holds the service and the clients behind it. Close releases them.
type App struct {
	Service *processing.Service
	Health  map[string]monitoring.Checker

	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// StartHealthMonitors polls every remote backend in the background until ctx
// is done. Backends start out healthy.
func (a *App) StartHealthMonitors(ctx context.Context) map[string]*atomic.Bool {
	flags := make(map[string]*atomic.Bool, len(a.Health))
	for name, checker := range a.Health {
		healthy := &atomic.Bool{}
		healthy.Store(true)
		flags[name] = healthy
		go monitoring.MonitorHealth(ctx, name, checker, healthy, monitoring.HEALTHCHECK_INTERVAL)
	}
	return flags
}

// builder creates each client at most once, so one Hugging Face or OpenAI
// client serves every role it is selected for.
type builder struct {
	cfg *config.Config
	app *App

	hf     *clients.HuggingFaceClient
	openai *clients.OpenAIClient
	vader  *sentiment.VaderClassifier
	hugot  *clients.HugotClassifier
}

// Build wires the service from configuration.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	b := &builder{cfg: cfg, app: &App{Health: make(map[string]monitoring.Checker)}}

	app, err := b.build(ctx)
	if err != nil {
		b.app.Close()
		return nil, err
	}
	return app, nil
}

func (b *builder) build(ctx context.Context) (*App, error) {
	general, err := b.general(b.cfg.GeneralClassifier)
	if err != nil {
		return nil, err
	}
	aspect, err := b.aspect(b.cfg.AspectClassifier)
	if err != nil {
		return nil, err
	}

	if b.cfg.Valkey.Enabled {
		valkey, err := clients.NewValkeyClient(ctx, b.cfg.Valkey)
		if err != nil {
			return nil, err
		}
		b.app.closers = append(b.app.closers, valkey.Close)

		namespace := b.cfg.GeneralClassifier + "+" + b.cfg.AspectClassifier
		cached := sentiment.NewCachedClassifier(namespace, valkey, b.cfg.Valkey.TTL, general, aspect)
		general, aspect = cached, cached
	}

	policy, err := sentiment.ParseFailurePolicy(b.cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}
	evaluator := sentiment.NewEvaluator(general, aspect,
		sentiment.WithWorkers(b.cfg.Workers),
		sentiment.WithFailurePolicy(policy))

	opts := []processing.ServiceOption{}

	summarizer, err := b.summarizer(b.cfg.Summarizer)
	if err != nil {
		return nil, err
	}
	opts = append(opts, processing.WithSummarizer(summarizer))

	source, err := b.source(b.cfg.ReviewSource)
	if err != nil {
		return nil, err
	}
	opts = append(opts, processing.WithReviewSource(source))

	if b.cfg.Kafka.Enabled {
		publisher, err := kafka_client.NewKafkaPublisher(b.cfg.Kafka)
		if err != nil {
			return nil, err
		}
		b.app.closers = append(b.app.closers, publisher.Close)
		opts = append(opts, processing.WithPublisher(publisher))
	}

	b.app.Service = processing.NewService(evaluator, opts...)

	slog.Info("[App] Service wired",
		slog.String("general", b.cfg.GeneralClassifier),
		slog.String("aspect", b.cfg.AspectClassifier),
		slog.String("summarizer", b.cfg.Summarizer),
		slog.String("source", b.cfg.ReviewSource),
		slog.Bool("cache", b.cfg.Valkey.Enabled),
		slog.Bool("publisher", b.cfg.Kafka.Enabled))
	return b.app, nil
}

func (b *builder) huggingFace() *clients.HuggingFaceClient {
	if b.hf == nil {
		b.hf = clients.NewHuggingFaceClient(b.cfg.HuggingFace)
		b.app.Health[BackendHuggingFace] = b.hf
	}
	return b.hf
}

func (b *builder) openAI() (*clients.OpenAIClient, error) {
	if b.openai == nil {
		client, err := clients.NewOpenAIClient(b.cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		b.openai = client
	}
	return b.openai, nil
}

func (b *builder) vaderClassifier() *sentiment.VaderClassifier {
	if b.vader == nil {
		b.vader = sentiment.NewVaderClassifier()
	}
	return b.vader
}

func (b *builder) general(name string) (sentiment.GeneralClassifier, error) {
	switch strings.ToLower(name) {
	case BackendHuggingFace:
		return b.huggingFace(), nil
	case BackendOpenAI:
		return b.openAI()
	case BackendVader:
		return b.vaderClassifier(), nil
	case BackendHugot:
		if b.hugot == nil {
			client, err := clients.NewHugotClassifier(b.cfg.Hugot)
			if err != nil {
				return nil, err
			}
			b.hugot = client
			b.app.closers = append(b.app.closers, client.Close)
		}
		return b.hugot, nil
	}
	return nil, fmt.Errorf("unknown general classifier %q", name)
}

func (b *builder) aspect(name string) (sentiment.AspectClassifier, error) {
	switch strings.ToLower(name) {
	case BackendHuggingFace:
		return b.huggingFace(), nil
	case BackendOpenAI:
		return b.openAI()
	case BackendVader:
		return b.vaderClassifier(), nil
	case BackendHugot:
		return nil, fmt.Errorf("%s cannot classify aspects", BackendHugot)
	}
	return nil, fmt.Errorf("unknown aspect classifier %q", name)
}

func (b *builder) summarizer(name string) (processing.Summarizer, error) {
	switch strings.ToLower(name) {
	case BackendHuggingFace:
		return b.huggingFace(), nil
	case BackendOpenAI:
		return b.openAI()
	}
	return nil, fmt.Errorf("unknown summarizer %q", name)
}

func (b *builder) source(name string) (processing.ReviewSource, error) {
	switch strings.ToLower(name) {
	case SourceSerpApi:
		return clients.NewSerpApiClient(b.cfg.SerpApi), nil
	case SourceReddit:
		return clients.NewRedditClient(b.cfg.Reddit), nil
	}
	return nil, fmt.Errorf("unknown review source %q", name)
}
