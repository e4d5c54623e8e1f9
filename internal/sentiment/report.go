package sentiment

import (
	"cmp"
	"slices"
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
)

// DetailRows flattens records into the detail table, sorted by aspect and
// label ascending and score descending. The sort is stable, so rows that tie
// on all three keep input order.
func DetailRows(records []models.SentimentRecord) []models.DetailRow {
	rows := make([]models.DetailRow, len(records))
	for i, r := range records {
		rows[i] = models.DetailRow{
			Review: r.Review.Text,
			Aspect: r.Aspect,
			Label:  r.Label,
			Score:  r.Score,
		}
	}

	slices.SortStableFunc(rows, func(a, b models.DetailRow) int {
		if c := strings.Compare(a.Aspect, b.Aspect); c != 0 {
			return c
		}
		if c := strings.Compare(string(a.Label), string(b.Label)); c != 0 {
			return c
		}
		return cmp.Compare(b.Score, a.Score)
	})
	return rows
}

// BuildGeneralAnalysis assembles the general report and detail table.
func BuildGeneralAnalysis(eval *Evaluation) (*models.GeneralAnalysis, error) {
	report, err := AggregateGeneral(eval.Records)
	if err != nil {
		return nil, err
	}
	return &models.GeneralAnalysis{
		Report:   report,
		Details:  DetailRows(eval.Records),
		Skipped:  len(eval.Failures),
		Analyzed: len(eval.Records),
	}, nil
}

// BuildAspectAnalysis assembles the per-aspect reports and detail table.
// aspects is the requested aspect set, already normalized.
func BuildAspectAnalysis(eval *Evaluation, aspects []string) (*models.AspectAnalysis, error) {
	reports, err := AggregateAspects(eval.Records, aspects)
	if err != nil {
		return nil, err
	}
	return &models.AspectAnalysis{
		Aspects:  aspects,
		Reports:  reports,
		Details:  DetailRows(eval.Records),
		Skipped:  len(eval.Failures),
		Analyzed: len(eval.Records),
	}, nil
}
