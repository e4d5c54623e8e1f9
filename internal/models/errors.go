package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInput marks malformed caller input: a bad source file, a missing
	// column, an empty aspect. It is never accompanied by a partial result.
	ErrInput = errors.New("invalid input")

	// ErrEmptyCorpus is returned by operations that cannot produce anything
	// from zero reviews. Analysis never returns it, empty corpora yield zero reports.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrAggregationInvariant signals a logic defect in the aggregator.
	ErrAggregationInvariant = errors.New("aggregation invariant violated")
)

// NewInputError formats a message and wraps ErrInput.
func NewInputError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInput, fmt.Sprintf(format, args...))
}

// ClassificationError is the failure to score a single review, or a single
// review and aspect pair.
type ClassificationError struct {
	Review Review
	Aspect string
	Err    error
}

func (e *ClassificationError) Error() string {
	if e.Aspect == "" {
		return fmt.Sprintf("classify review %d: %v", e.Review.Position, e.Err)
	}
	return fmt.Sprintf("classify review %d aspect %q: %v", e.Review.Position, e.Aspect, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }
