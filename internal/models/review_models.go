package models

import "strings"

// SentimentLabel is the canonical label set every classifier output is normalized into.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNeutral  SentimentLabel = "NEUTRAL"
	LabelNegative SentimentLabel = "NEGATIVE"
)

func (l SentimentLabel) String() string { return string(l) }

// Review is a single review text and its position in the source corpus.
type Review struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// NewReviews wraps raw review strings, keeping their input order.
func NewReviews(texts []string) []Review {
	reviews := make([]Review, len(texts))
	for i, text := range texts {
		reviews[i] = Review{Text: text, Position: i}
	}
	return reviews
}

// Prediction is the raw output of a classifier before normalization.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentRecord is one normalized classification of a review. Aspect is
// empty for whole-review (general) sentiment.
type SentimentRecord struct {
	Review Review         `json:"review"`
	Aspect string         `json:"aspect,omitempty"`
	Label  SentimentLabel `json:"label"`
	Score  float64        `json:"score"`
}

func (r SentimentRecord) IsGeneral() bool { return r.Aspect == "" }

// AspectReport holds the statistics of one aspect group. The review fields are
// nil when the group has no record with the corresponding label.
type AspectReport struct {
	Aspect             string  `json:"aspect"`
	PositiveCount      int     `json:"positive_count"`
	NeutralCount       int     `json:"neutral_count"`
	NegativeCount      int     `json:"negative_count"`
	MostPositiveReview *string `json:"most_positive_review"`
	MostNegativeReview *string `json:"most_negative_review"`
}

func (r AspectReport) Total() int {
	return r.PositiveCount + r.NeutralCount + r.NegativeCount
}

// GeneralReport is the corpus-wide report of general mode. The general
// classifier is binary so there is no neutral count.
type GeneralReport struct {
	PositiveCount      int     `json:"positive_count"`
	NegativeCount      int     `json:"negative_count"`
	MostPositiveReview *string `json:"most_positive_review"`
	MostNegativeReview *string `json:"most_negative_review"`
}

// Tuple returns the report in its flat (positive, negative, most positive,
// most negative) form with absent reviews rendered as "".
func (r GeneralReport) Tuple() (int, int, string, string) {
	return r.PositiveCount, r.NegativeCount, ReviewText(r.MostPositiveReview), ReviewText(r.MostNegativeReview)
}

// ReviewText dereferences an optional extremal review.
func ReviewText(review *string) string {
	if review == nil {
		return ""
	}
	return *review
}

// DetailRow is one row of the persisted detail table.
type DetailRow struct {
	Review string         `json:"review"`
	Aspect string         `json:"aspect,omitempty"`
	Label  SentimentLabel `json:"label"`
	Score  float64        `json:"score"`
}

// SortOrder is the order reviews are requested from a review source in.
type SortOrder string

const (
	SortRelevancy      SortOrder = "relevancy"
	SortSubmissionDesc SortOrder = "submission-desc"
	SortHelpful        SortOrder = "helpful"
	SortRatingDesc     SortOrder = "rating-desc"
	SortRatingAsc      SortOrder = "rating-asc"
)

var SortOrders = []SortOrder{SortRelevancy, SortSubmissionDesc, SortHelpful, SortRatingDesc, SortRatingAsc}

// ParseSortOrder accepts a sort order case-insensitively. Empty input means relevancy.
func ParseSortOrder(s string) (SortOrder, error) {
	if strings.TrimSpace(s) == "" {
		return SortRelevancy, nil
	}
	for _, order := range SortOrders {
		if strings.EqualFold(s, string(order)) {
			return order, nil
		}
	}
	return "", NewInputError("unknown sort order %q", s)
}
