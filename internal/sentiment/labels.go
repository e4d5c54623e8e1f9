package sentiment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
)

const scoreDecimals = 5

var labelAliases = map[string]models.SentimentLabel{
	"positive": models.LabelPositive,
	"pos":      models.LabelPositive,
	"negative": models.LabelNegative,
	"neg":      models.LabelNegative,
	"neutral":  models.LabelNeutral,
	"neu":      models.LabelNeutral,
}

// NormalizeLabel maps a provider label ("Positive", "NEG", "neutral", ...) to
// the canonical label set.
func NormalizeLabel(raw string) (models.SentimentLabel, error) {
	label, ok := labelAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown sentiment label %q", raw)
	}
	return label, nil
}

// RoundScore rounds a confidence score to five decimal digits. The exact
// binary value is rounded, with ties to even, so 0.015625 gives 0.01562.
func RoundScore(score float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(score, 'f', scoreDecimals, 64), 64)
	if err != nil {
		return score
	}
	return rounded
}

// normalizePrediction turns raw classifier output into a canonical label and
// a rounded score. allowNeutral is false for the binary general classifier.
func normalizePrediction(p models.Prediction, allowNeutral bool) (models.SentimentLabel, float64, error) {
	label, err := NormalizeLabel(p.Label)
	if err != nil {
		return "", 0, err
	}
	if label == models.LabelNeutral && !allowNeutral {
		return "", 0, fmt.Errorf("label %s not allowed for general sentiment", label)
	}
	if math.IsNaN(p.Score) || p.Score < 0 || p.Score > 1 {
		return "", 0, fmt.Errorf("score %v outside [0,1]", p.Score)
	}
	return label, RoundScore(p.Score), nil
}
