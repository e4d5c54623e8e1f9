package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spacesedan/reviewpulse/internal/models"
)

const reviewPreviewLen = 60

func printGeneralAnalysis(w io.Writer, a *models.GeneralAnalysis) {
	pos, neg, mostPos, mostNeg := a.Report.Tuple()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Positive\t%d\n", pos)
	fmt.Fprintf(tw, "Negative\t%d\n", neg)
	fmt.Fprintf(tw, "Most positive\t%s\n", orDash(mostPos))
	fmt.Fprintf(tw, "Most negative\t%s\n", orDash(mostNeg))
	if a.Skipped > 0 {
		fmt.Fprintf(tw, "Skipped\t%d\n", a.Skipped)
	}
	tw.Flush()
}

func printAspectAnalysis(w io.Writer, a *models.AspectAnalysis) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASPECT\tPOSITIVE\tNEUTRAL\tNEGATIVE\tMOST POSITIVE\tMOST NEGATIVE")
	for _, r := range a.Reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
			r.Aspect, r.PositiveCount, r.NeutralCount, r.NegativeCount,
			orDash(truncate(models.ReviewText(r.MostPositiveReview))),
			orDash(truncate(models.ReviewText(r.MostNegativeReview))))
	}
	tw.Flush()

	if a.Skipped > 0 {
		fmt.Fprintf(w, "%d classifications skipped\n", a.Skipped)
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= reviewPreviewLen {
		return s
	}
	return string(r[:reviewPreviewLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
