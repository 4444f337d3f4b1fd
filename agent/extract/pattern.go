package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/textmatch"
)

var (
	leadingQuantity = regexp.MustCompile(`(?i)^\s*(\d+|\p{L}+)\s*(?:(?:x|vez|vezes|pastel|past[eé]is|unidades?|pcs?|pçs?)\b)?\s*(?:(?:de|do|da|dos|das|of)\s+)?(.+)$`)

	trailingQuantity = regexp.MustCompile(`(?i)^(.+?)\s+(?:x\s*)?(\d+)\s*(?:x|unidades?|pcs?)?\s*$`)

	removalVerb = regexp.MustCompile(`(?i)^\s*(?:por\s+favor\s*,?\s*)?(?:pode\s+)?(?:remov\p{L}*|retir\p{L}*|tir\p{L}*|exclu\p{L}*|cancel\p{L}*|delet\p{L}*|take\s+out|drop)\s+`)

	removeAllWords = regexp.MustCompile(`(?i)(?:^|\s)(?:todos|todas|todo|toda|tudo|all)(?:\s+(?:os|as|o|a|the))?(?:\s|$)`)

	leadingFiller = regexp.MustCompile(`(?i)^(?:os|as|o|a|the|de|do|da|dos|das|of|pastel|past[eé]is)\s+`)

	trailingPolite = regexp.MustCompile(`(?i)[\s,]*(?:por\s+favor|please|pfv|pf)\s*$`)
)

var numberWords = map[string]int{
	"um": 1, "uma": 1, "dois": 2, "duas": 2, "tres": 3, "quatro": 4, "cinco": 5,
	"seis": 6, "sete": 7, "oito": 8, "nove": 9, "dez": 10, "onze": 11, "doze": 12,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

// PatternExtractor is the deterministic quantity grammar. It never fails.
type PatternExtractor struct{}

var _ contractx.QuantityExtractor = PatternExtractor{}

func NewPatternExtractor() PatternExtractor {
	return PatternExtractor{}
}

// ExtractQuantity splits a leading (or trailing) count off phrase. Without a
// count the phrase comes back unchanged with Count 0.
func (PatternExtractor) ExtractQuantity(_ context.Context, phrase string) contractx.Quantity {
	text := strings.TrimSpace(phrase)
	if text == "" {
		return contractx.Quantity{}
	}

	if m := leadingQuantity.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok {
			if flavor := cleanFlavor(m[2]); flavor != "" {
				return contractx.Quantity{Flavor: flavor, Count: n, Zero: n == 0}
			}
		}
	}
	if m := trailingQuantity.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[2]); ok {
			if flavor := cleanFlavor(m[1]); flavor != "" {
				return contractx.Quantity{Flavor: flavor, Count: n, Zero: n == 0}
			}
		}
	}
	return contractx.Quantity{Flavor: text}
}

// ExtractRemoval understands "tira 1 de frango", "remove todos os de queijo"
// and bare flavor phrases. It reports false only when no flavor is left.
func (p PatternExtractor) ExtractRemoval(ctx context.Context, phrase string) (contractx.Removal, bool) {
	text := removalVerb.ReplaceAllString(strings.TrimSpace(phrase), "")

	all := false
	if removeAllWords.MatchString(text) {
		all = true
		text = removeAllWords.ReplaceAllString(text, " ")
	}

	q := p.ExtractQuantity(ctx, text)
	flavor := cleanFlavor(q.Flavor)
	if flavor == "" {
		return contractx.Removal{}, false
	}
	return contractx.Removal{Flavor: flavor, Count: q.Count, All: all && !q.Zero, Zero: q.Zero}, true
}

// parseCount reads a digit or number-word count. Digit counts above
// MaxQuantity saturate at MaxQuantity+1 so callers can refuse them.
func parseCount(token string) (int, bool) {
	token = strings.TrimSpace(token)
	if token != "" && strings.Trim(token, "0123456789") == "" {
		n, err := strconv.Atoi(token)
		if err != nil || n > contractx.MaxQuantity {
			return contractx.MaxQuantity + 1, true
		}
		return n, true
	}
	n, ok := numberWords[textmatch.Normalize(token)]
	return n, ok
}

func cleanFlavor(s string) string {
	s = trailingPolite.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), ".,!?;:\"'")
	for i := 0; i < 4; i++ {
		next := leadingFiller.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = strings.TrimSpace(next)
	}
	return strings.Join(strings.Fields(s), " ")
}
