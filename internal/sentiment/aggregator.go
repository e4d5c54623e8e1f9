package sentiment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
)

// group accumulates the statistics of one partition. The extremal records
// only move on a strictly greater score, so the first maximum wins.
type group struct {
	aspect   string
	size     int
	positive int
	neutral  int
	negative int
	mostPos  *models.SentimentRecord
	mostNeg  *models.SentimentRecord
}

func (g *group) add(r *models.SentimentRecord) {
	g.size++
	switch r.Label {
	case models.LabelPositive:
		g.positive++
		if g.mostPos == nil || r.Score > g.mostPos.Score {
			g.mostPos = r
		}
	case models.LabelNegative:
		g.negative++
		if g.mostNeg == nil || r.Score > g.mostNeg.Score {
			g.mostNeg = r
		}
	case models.LabelNeutral:
		g.neutral++
	}
}

func (g *group) check() error {
	if g.positive+g.neutral+g.negative != g.size {
		return fmt.Errorf("%w: group %q counts %d+%d+%d != %d records",
			models.ErrAggregationInvariant, g.aspect, g.positive, g.neutral, g.negative, g.size)
	}
	if (g.mostPos != nil) != (g.positive > 0) || (g.mostNeg != nil) != (g.negative > 0) {
		return fmt.Errorf("%w: group %q extremal review does not match its count",
			models.ErrAggregationInvariant, g.aspect)
	}
	return nil
}

func extremal(r *models.SentimentRecord) *string {
	if r == nil {
		return nil
	}
	text := r.Review.Text
	return &text
}

// AggregateAspects partitions aspect records by aspect and reports on every
// group, ordered by aspect name. Every requested aspect gets a report, even
// one no review matched.
func AggregateAspects(records []models.SentimentRecord, requested []string) ([]models.AspectReport, error) {
	groups := make(map[string]*group, len(requested))
	var order []*group

	lookup := func(aspect string) *group {
		key := foldKey(aspect)
		g, ok := groups[key]
		if !ok {
			g = &group{aspect: aspect}
			groups[key] = g
			order = append(order, g)
		}
		return g
	}

	for _, aspect := range requested {
		lookup(aspect)
	}
	for i := range records {
		r := &records[i]
		if r.IsGeneral() {
			return nil, fmt.Errorf("%w: record for review %d has no aspect",
				models.ErrAggregationInvariant, r.Review.Position)
		}
		lookup(r.Aspect).add(r)
	}

	slices.SortFunc(order, func(a, b *group) int {
		return strings.Compare(a.aspect, b.aspect)
	})

	reports := make([]models.AspectReport, 0, len(order))
	for _, g := range order {
		if err := g.check(); err != nil {
			return nil, err
		}
		reports = append(reports, models.AspectReport{
			Aspect:             g.aspect,
			PositiveCount:      g.positive,
			NeutralCount:       g.neutral,
			NegativeCount:      g.negative,
			MostPositiveReview: extremal(g.mostPos),
			MostNegativeReview: extremal(g.mostNeg),
		})
	}
	return reports, nil
}

// AggregateGeneral treats the whole corpus as one group. An empty corpus
// yields the zero report.
func AggregateGeneral(records []models.SentimentRecord) (models.GeneralReport, error) {
	g := &group{}
	for i := range records {
		g.add(&records[i])
	}
	if err := g.check(); err != nil {
		return models.GeneralReport{}, err
	}
	if g.neutral > 0 {
		return models.GeneralReport{}, fmt.Errorf("%w: %d neutral records in general corpus",
			models.ErrAggregationInvariant, g.neutral)
	}

	return models.GeneralReport{
		PositiveCount:      g.positive,
		NegativeCount:      g.negative,
		MostPositiveReview: extremal(g.mostPos),
		MostNegativeReview: extremal(g.mostNeg),
	}, nil
}
