package sentiment

import (
	"strings"

	"github.com/spacesedan/reviewpulse/internal/models"
	"golang.org/x/text/cases"
)

// foldKey returns the case-folded form used to compare aspects and review text.
// A Caser is stateful, so each call gets its own.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

// NormalizeAspects trims the requested aspects and drops case-insensitive
// duplicates, keeping the first spelling. An empty aspect would match every
// review and is rejected.
func NormalizeAspects(aspects []string) ([]string, error) {
	seen := make(map[string]struct{}, len(aspects))
	out := make([]string, 0, len(aspects))
	for _, aspect := range aspects {
		aspect = strings.TrimSpace(aspect)
		if aspect == "" {
			return nil, models.NewInputError("empty aspect")
		}
		key := foldKey(aspect)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, aspect)
	}
	return out, nil
}

// MatchAspects returns the aspects that occur in text as case-insensitive
// substrings, in the order they were requested. "cam" matches "camera".
func MatchAspects(text string, aspects []string) []string {
	if len(aspects) == 0 {
		return nil
	}
	folded := foldKey(text)

	var matched []string
	for _, aspect := range aspects {
		if strings.Contains(folded, foldKey(aspect)) {
			matched = append(matched, aspect)
		}
	}
	return matched
}
