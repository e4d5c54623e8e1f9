package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

// GeneralClassifier scores a whole review. Implementations return
// POSITIVE or NEGATIVE in whatever spelling their provider uses.
type GeneralClassifier interface {
	ClassifyGeneral(ctx context.Context, text string) (models.Prediction, error)
}

// AspectClassifier scores a review with respect to one aspect.
type AspectClassifier interface {
	ClassifyAspect(ctx context.Context, text, aspect string) (models.Prediction, error)
}

// FailurePolicy decides what happens to a batch when one item fails.
type FailurePolicy int

const (
	// SkipFailed drops failed items and keeps going.
	SkipFailed FailurePolicy = iota
	// FailFast aborts the batch on the first failed item.
	FailFast
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return SkipFailed, nil
	case "fail":
		return FailFast, nil
	default:
		return SkipFailed, models.NewInputError("unknown failure policy %q", s)
	}
}

// Evaluation is the output of one evaluator pass. Records keep input order:
// review order, then requested aspect order.
type Evaluation struct {
	Records  []models.SentimentRecord
	Failures []*models.ClassificationError
}

type Evaluator struct {
	general GeneralClassifier
	aspect  AspectClassifier
	workers int
	policy  FailurePolicy
}

type EvaluatorOption func(*Evaluator)

func WithWorkers(n int) EvaluatorOption {
	return func(e *Evaluator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithFailurePolicy(p FailurePolicy) EvaluatorOption {
	return func(e *Evaluator) { e.policy = p }
}

// NewEvaluator builds an evaluator around the given classifiers. Either may be
// nil when the corresponding mode is not used.
func NewEvaluator(general GeneralClassifier, aspect AspectClassifier, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		general: general,
		aspect:  aspect,
		workers: DefaultWorkers,
		policy:  SkipFailed,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type evalJob struct {
	review models.Review
	aspect string
}

// EvaluateGeneral classifies every review once with the general classifier.
func (e *Evaluator) EvaluateGeneral(ctx context.Context, reviews []models.Review) (*Evaluation, error) {
	if e.general == nil {
		return nil, errors.New("evaluator has no general classifier")
	}

	jobs := make([]evalJob, len(reviews))
	for i, review := range reviews {
		jobs[i] = evalJob{review: review}
	}

	return e.run(ctx, jobs, false, func(ctx context.Context, j evalJob) (models.Prediction, error) {
		return e.general.ClassifyGeneral(ctx, j.review.Text)
	})
}

// EvaluateAspects classifies every (review, matched aspect) pair. Reviews that
// match none of the aspects contribute no record.
func (e *Evaluator) EvaluateAspects(ctx context.Context, reviews []models.Review, aspects []string) (*Evaluation, error) {
	if e.aspect == nil {
		return nil, errors.New("evaluator has no aspect classifier")
	}

	var jobs []evalJob
	for _, review := range reviews {
		for _, aspect := range MatchAspects(review.Text, aspects) {
			jobs = append(jobs, evalJob{review: review, aspect: aspect})
		}
	}

	return e.run(ctx, jobs, true, func(ctx context.Context, j evalJob) (models.Prediction, error) {
		return e.aspect.ClassifyAspect(ctx, j.review.Text, j.aspect)
	})
}

func (e *Evaluator) run(ctx context.Context, jobs []evalJob, allowNeutral bool, classify func(context.Context, evalJob) (models.Prediction, error)) (*Evaluation, error) {
	records := make([]*models.SentimentRecord, len(jobs))
	failures := make([]*models.ClassificationError, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			prediction, err := classify(gctx, j)
			var (
				label models.SentimentLabel
				score float64
			)
			if err == nil {
				label, score, err = normalizePrediction(prediction, allowNeutral)
			}
			if err != nil {
				// a cancelled batch is not a per-item failure
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				classErr := &models.ClassificationError{Review: j.review, Aspect: j.aspect, Err: err}
				if e.policy == FailFast {
					return classErr
				}
				failures[i] = classErr
				return nil
			}

			records[i] = &models.SentimentRecord{
				Review: j.review,
				Aspect: j.aspect,
				Label:  label,
				Score:  score,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate batch: %w", err)
	}

	eval := &Evaluation{Records: make([]models.SentimentRecord, 0, len(jobs))}
	for i := range jobs {
		if records[i] != nil {
			eval.Records = append(eval.Records, *records[i])
			continue
		}
		if failures[i] != nil {
			slog.Warn("[Evaluator] Skipping item that failed classification",
				slog.Int("position", failures[i].Review.Position),
				slog.String("aspect", failures[i].Aspect),
				slog.String("error", failures[i].Err.Error()))
			eval.Failures = append(eval.Failures, failures[i])
		}
	}

	slog.Debug("[Evaluator] Batch evaluated",
		slog.Int("jobs", len(jobs)),
		slog.Int("records", len(eval.Records)),
		slog.Int("skipped", len(eval.Failures)))

	return eval, nil
}
