package sentiment

import (
	"context"
	"html"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/reviewpulse/internal/models"
)

const vaderNeutralBand = 0.20

var (
	linkPattern     = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
	sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips it back to plain words.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(output), " "))
	plainText = RemoveLinks(strings.Join(strings.Fields(plainText), " "))

	return strings.TrimSpace(plainText)
}

// VaderClassifier is a lexicon-based classifier that needs no model or
// network. It serves both modes: binary for general sentiment, ternary for
// aspects, where only the sentences mentioning the aspect are scored.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderClassifier) compound(text string) float64 {
	return v.analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound
}

func (v *VaderClassifier) ClassifyGeneral(ctx context.Context, text string) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}

	score := v.compound(text)
	label := models.LabelPositive
	if score < 0 {
		label = models.LabelNegative
	}
	return models.Prediction{Label: label.String(), Score: 0.5 + math.Abs(score)/2}, nil
}

func (v *VaderClassifier) ClassifyAspect(ctx context.Context, text, aspect string) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}

	score := v.compound(aspectSentences(text, aspect))
	switch {
	case score >= vaderNeutralBand:
		return models.Prediction{Label: "positive", Score: 0.5 + score/2}, nil
	case score <= -vaderNeutralBand:
		return models.Prediction{Label: "negative", Score: 0.5 - score/2}, nil
	default:
		return models.Prediction{Label: "neutral", Score: 1 - math.Abs(score)}, nil
	}
}

// aspectSentences keeps the sentences of text that mention aspect, or the
// whole text if no sentence boundary isolates it.
func aspectSentences(text, aspect string) string {
	key := foldKey(aspect)

	var kept []string
	for _, sentence := range sentencePattern.FindAllString(text, -1) {
		if strings.Contains(foldKey(sentence), key) {
			kept = append(kept, strings.TrimSpace(sentence))
		}
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, " ")
}
