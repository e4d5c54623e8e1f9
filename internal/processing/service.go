package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/reviewpulse/internal/db"
	"github.com/spacesedan/reviewpulse/internal/models"
	"github.com/spacesedan/reviewpulse/internal/sentiment"
)

const (
	DefaultReviewCount = 100
	MaxReviewCount     = 1000

	DefaultReviewsFile = "reviews.csv"
	DefaultDetailsFile = "sentiment.csv"

	// PublishTimeout bounds how long a finished analysis waits on the publisher.
	PublishTimeout = 30 * time.Second
)

// ReviewSource yields up to count reviews for a product in the given order.
type ReviewSource interface {
	ExtractReviews(ctx context.Context, target string, count int, sort models.SortOrder) ([]string, error)
}

// Summarizer reduces a set of reviews to one narrative.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (string, error)
}

// Publisher ships finished analyses to downstream consumers.
type Publisher interface {
	PublishAnalysis(ctx context.Context, event models.AnalysisEvent) error
}

// Service runs the review workflows: scraping, analysis and summaries.
// Source, summarizer and publisher are optional.
type Service struct {
	evaluator  *sentiment.Evaluator
	source     ReviewSource
	summarizer Summarizer
	publisher  Publisher

	newRunID       func() string
	now            func() time.Time
	publishTimeout time.Duration
}

type ServiceOption func(*Service)

func WithReviewSource(src ReviewSource) ServiceOption {
	return func(s *Service) { s.source = src }
}

func WithSummarizer(sum Summarizer) ServiceOption {
	return func(s *Service) { s.summarizer = sum }
}

func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithPublishTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func NewService(evaluator *sentiment.Evaluator, opts ...ServiceOption) *Service {
	s := &Service{
		evaluator:      evaluator,
		newRunID:       uuid.NewString,
		now:            time.Now,
		publishTimeout: PublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeReviews pulls count reviews for target from the review source.
func (s *Service) ScrapeReviews(ctx context.Context, target string, count int, sort models.SortOrder) ([]string, error) {
	if s.source == nil {
		return nil, errors.New("no review source configured")
	}
	if count < 1 || count > MaxReviewCount {
		return nil, models.NewInputError("count must be between 1 and %d, got %d", MaxReviewCount, count)
	}

	slog.Info("[Service] Scraping reviews",
		slog.String("target", target),
		slog.Int("count", count),
		slog.String("sort", string(sort)))

	reviews, err := s.source.ExtractReviews(ctx, target, count, sort)
	if err != nil {
		return nil, fmt.Errorf("extract reviews: %w", err)
	}
	return reviews, nil
}

// ScrapeToCSV scrapes reviews and writes them to destination as a single
// review column, replacing any previous file.
func (s *Service) ScrapeToCSV(ctx context.Context, target string, count int, sort models.SortOrder, destination string) ([]string, error) {
	reviews, err := s.ScrapeReviews(ctx, target, count, sort)
	if err != nil {
		return nil, err
	}
	if err := db.WriteReviews(destination, reviews); err != nil {
		return nil, err
	}

	slog.Info("[Service] Reviews saved",
		slog.String("destination", destination),
		slog.Int("count", len(reviews)))
	return reviews, nil
}

// Summarize asks the summarizer for one narrative over reviews.
func (s *Service) Summarize(ctx context.Context, reviews []string) (string, error) {
	if s.summarizer == nil {
		return "", errors.New("no summarizer configured")
	}
	if len(reviews) == 0 {
		return "", models.ErrEmptyCorpus
	}

	start := time.Now()
	summary, err := s.summarizer.Summarize(ctx, reviews)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	slog.Info("[Service] Reviews summarized",
		slog.Int("reviews", len(reviews)),
		slog.Duration("elapsed", time.Since(start)))
	return summary, nil
}

func (s *Service) SummarizeFile(ctx context.Context, source string) (string, error) {
	reviews, err := db.ReadReviews(source)
	if err != nil {
		return "", err
	}
	return s.Summarize(ctx, reviews)
}

// AnalyzeGeneral classifies every review and reports corpus-wide counts and
// the extremal reviews. Zero reviews give a zero report.
func (s *Service) AnalyzeGeneral(ctx context.Context, reviews []string) (*models.GeneralAnalysis, error) {
	analysis, err := s.analyzeGeneral(ctx, reviews)
	if err != nil {
		return nil, err
	}
	s.publishGeneral(ctx, analysis, "")
	return analysis, nil
}

func (s *Service) analyzeGeneral(ctx context.Context, reviews []string) (*models.GeneralAnalysis, error) {
	eval, err := s.evaluator.EvaluateGeneral(ctx, models.NewReviews(reviews))
	if err != nil {
		return nil, err
	}

	analysis, err := sentiment.BuildGeneralAnalysis(eval)
	if err != nil {
		return nil, err
	}
	analysis.RunID = s.newRunID()

	slog.Info("[Service] General analysis complete",
		slog.String("run_id", analysis.RunID),
		slog.Int("analyzed", analysis.Analyzed),
		slog.Int("skipped", analysis.Skipped))
	return analysis, nil
}

// AnalyzeAspects reports per-aspect sentiment. Every requested aspect is in
// the result, matched or not.
func (s *Service) AnalyzeAspects(ctx context.Context, reviews []string, aspects []string) (*models.AspectAnalysis, error) {
	analysis, err := s.analyzeAspects(ctx, reviews, aspects)
	if err != nil {
		return nil, err
	}
	s.publishAspects(ctx, analysis, "")
	return analysis, nil
}

func (s *Service) analyzeAspects(ctx context.Context, reviews []string, aspects []string) (*models.AspectAnalysis, error) {
	normalized, err := sentiment.NormalizeAspects(aspects)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return nil, models.NewInputError("no aspects requested")
	}

	eval, err := s.evaluator.EvaluateAspects(ctx, models.NewReviews(reviews), normalized)
	if err != nil {
		return nil, err
	}

	analysis, err := sentiment.BuildAspectAnalysis(eval, normalized)
	if err != nil {
		return nil, err
	}
	analysis.RunID = s.newRunID()

	slog.Info("[Service] Aspect analysis complete",
		slog.String("run_id", analysis.RunID),
		slog.Any("aspects", normalized),
		slog.Int("analyzed", analysis.Analyzed),
		slog.Int("skipped", analysis.Skipped))
	return analysis, nil
}

// AnalyzeGeneralFile runs general analysis over a review CSV and writes the
// detail table to destination.
func (s *Service) AnalyzeGeneralFile(ctx context.Context, source, destination string) (*models.GeneralAnalysis, error) {
	reviews, err := db.ReadReviews(source)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzeGeneral(ctx, reviews)
	if err != nil {
		return nil, err
	}
	if err := db.WriteDetails(destination, models.ModeGeneral, analysis.Details); err != nil {
		return nil, err
	}

	s.publishGeneral(ctx, analysis, source)
	return analysis, nil
}

// AnalyzeAspectsFile is AnalyzeGeneralFile for aspect mode.
func (s *Service) AnalyzeAspectsFile(ctx context.Context, source, destination string, aspects []string) (*models.AspectAnalysis, error) {
	reviews, err := db.ReadReviews(source)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzeAspects(ctx, reviews, aspects)
	if err != nil {
		return nil, err
	}
	if err := db.WriteDetails(destination, models.ModeAspect, analysis.Details); err != nil {
		return nil, err
	}

	s.publishAspects(ctx, analysis, source)
	return analysis, nil
}

func (s *Service) publishGeneral(ctx context.Context, a *models.GeneralAnalysis, source string) {
	report := a.Report
	s.publish(ctx, models.AnalysisEvent{
		RunID:         a.RunID,
		Mode:          models.ModeGeneral,
		Source:        source,
		GeneralReport: &report,
		Details:       a.Details,
		Skipped:       a.Skipped,
	})
}

func (s *Service) publishAspects(ctx context.Context, a *models.AspectAnalysis, source string) {
	s.publish(ctx, models.AnalysisEvent{
		RunID:         a.RunID,
		Mode:          models.ModeAspect,
		Source:        source,
		AspectReports: a.Reports,
		Details:       a.Details,
		Skipped:       a.Skipped,
	})
}

// publish failures are logged only, the analysis itself succeeded
func (s *Service) publish(ctx context.Context, event models.AnalysisEvent) {
	if s.publisher == nil {
		return
	}
	event.Timestamp = s.now().UTC()

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.publisher.PublishAnalysis(ctx, event); err != nil {
		slog.Warn("[Service] Failed to publish analysis",
			slog.String("run_id", event.RunID),
			slog.String("error", err.Error()))
	}
}
