package textmatch

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	ExactScore     = 1.0
	SubstringScore = 0.9
)

// Normalize folds text for comparison: NFKD decomposition, combining marks
// removed, lower case, surrounding whitespace trimmed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// Similarity scores two phrases in [0,1]. Exact matches score 1.0, containment
// 0.9, anything else falls back to a matching-blocks ratio.
func Similarity(a, b string) float64 {
	return Score(Normalize(a), Normalize(b))
}

// Score is Similarity for inputs that are already normalized.
func Score(a, b string) float64 {
	if a == b {
		return ExactScore
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return SubstringScore
	}
	return Ratio(a, b)
}

// Ratio is the SequenceMatcher ratio 2*M/T over runes, where M counts the
// runes in matching blocks and T is the rune count of both inputs.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return ExactScore
	}
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
