package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/textmatch"
)

const (
	PaymentPIX  = "PIX"
	PaymentCard = "Cartão na entrega"
	PaymentCash = "Dinheiro"

	maxNameWords = 4
)

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmeu\s+nome\s+(?:é|e|eh)\s+(.+)`),
		regexp.MustCompile(`(?i)\bme\s+chamo\s+(.+)`),
		regexp.MustCompile(`(?i)\bpode\s+me\s+chamar\s+de\s+(.+)`),
		regexp.MustCompile(`(?i)(?:^|\s)sou\s+(?:o|a)\s+(.+)`),
		regexp.MustCompile(`(?i)\bmy\s+name\s+is\s+(.+)`),
		regexp.MustCompile(`(?i)\bcall\s+me\s+(.+)`),
	}

	addressPrefix = regexp.MustCompile(`(?i)^\s*(?:(?:o\s+)?meu\s+)?(?:endere[cç]o(?:\s+de\s+entrega)?\s*(?:é|e|eh|:)?|entreg(?:ar|a|e)\s+(?:na|no|em)|moro\s+(?:na|no|em)|fica\s+(?:na|no|em)|my\s+address\s+is|deliver\s+to)\s*`)

	streetKeyword = regexp.MustCompile(`(?i)(?:^|\s)(?:rua|r\.|avenida|av\.?|travessa|tv\.|alameda|al\.|pra[cç]a|estrada|rodovia|rod\.|largo|quadra|qd\.|street|st\.|road|avenue|ave\.)(?:\s|$)`)

	streetNumber = regexp.MustCompile(`^\p{L}[\p{L} .'-]{2,},\s*(?:n[º°o]?\.?\s*)?\d+`)

	paymentKeywords = []struct {
		re     *regexp.Regexp
		method string
	}{
		{regexp.MustCompile(`\bpix\b`), PaymentPIX},
		{regexp.MustCompile(`\b(?:cartao|credito|debito|card|maquininha)\b`), PaymentCard},
		{regexp.MustCompile(`\b(?:dinheiro|especie|cash|troco)\b`), PaymentCash},
	}

	// Words that end a name or rule out a bare reply being a name.
	nameStopWords = map[string]bool{
		"e": true, "and": true, "quero": true, "queria": true, "gostaria": true,
		"vou": true, "pode": true, "por": true, "mas": true, "eu": true,
		"aqui": true, "pra": true, "para": true, "com": true, "want": true,
		"i": true, "to": true, "mais": true, "tira": true, "remove": true,
		"adiciona": true, "coloca": true, "pastel": true, "pasteis": true,
	}

	notNames = map[string]bool{
		"sim": true, "nao": true, "ok": true, "oi": true, "ola": true, "obrigado": true,
		"obrigada": true, "bom dia": true, "boa tarde": true, "boa noite": true,
		"tudo bem": true, "yes": true, "no": true, "hi": true, "hello": true,
		"thanks": true, "pix": true, "dinheiro": true, "cartao": true, "confirmo": true,
		"pode ser": true, "isso": true, "certo": true, "beleza": true,
	}

	lowerConnectors = map[string]bool{"da": true, "de": true, "do": true, "das": true, "dos": true, "e": true}
)

// PatternSlots extracts profile fields with fixed phrase patterns from the
// latest user message.
type PatternSlots struct{}

var _ contractx.SlotExtractor = PatternSlots{}

func (PatternSlots) ExtractName(_ context.Context, req contractx.SlotRequest) (string, bool) {
	text := strings.TrimSpace(req.LastUserMessage)
	if text == "" {
		return "", false
	}
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name, true
			}
		}
	}
	if req.Awaiting {
		return simpleNameReply(text)
	}
	return "", false
}

func (PatternSlots) ExtractAddress(_ context.Context, req contractx.SlotRequest) (string, bool) {
	text := strings.TrimSpace(req.LastUserMessage)
	text = strings.TrimSpace(addressPrefix.ReplaceAllString(text, ""))
	text = strings.TrimRight(text, ".!")
	if text == "" || !containsDigit(text) {
		return "", false
	}
	if streetKeyword.MatchString(" "+text) || streetNumber.MatchString(text) {
		return text, true
	}
	return "", false
}

func (PatternSlots) ExtractPayment(_ context.Context, req contractx.SlotRequest) (string, bool) {
	return NormalizePayment(req.LastUserMessage)
}

// NormalizePayment maps free text to one of the accepted payment methods,
// picking the earliest mention.
func NormalizePayment(text string) (string, bool) {
	norm := textmatch.Normalize(text)
	best, bestAt := "", -1
	for _, kw := range paymentKeywords {
		loc := kw.re.FindStringIndex(norm)
		if loc == nil {
			continue
		}
		if bestAt < 0 || loc[0] < bestAt {
			best, bestAt = kw.method, loc[0]
		}
	}
	return best, bestAt >= 0
}

func cleanName(raw string) string {
	if i := strings.IndexAny(raw, ",.!?;:\n"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Trim(strings.TrimSpace(raw), "\"'")
	var words []string
	for _, tok := range strings.Fields(raw) {
		if nameStopWords[textmatch.Normalize(tok)] {
			break
		}
		if containsDigit(tok) || !isNameToken(tok) {
			break
		}
		words = append(words, tok)
		if len(words) == maxNameWords {
			break
		}
	}
	return titleName(words)
}

// simpleNameReply accepts a bare reply such as "ana paula" while the name
// prompt is pending: one to four words, no digits, no question.
func simpleNameReply(text string) (string, bool) {
	text = strings.TrimRight(strings.TrimSpace(text), ".!")
	if strings.ContainsAny(text, "?,;:") || containsDigit(text) {
		return "", false
	}
	words := strings.Fields(text)
	if len(words) == 0 || len(words) > maxNameWords {
		return "", false
	}
	if notNames[textmatch.Normalize(text)] {
		return "", false
	}
	for _, w := range words {
		if !isNameToken(w) || nameStopWords[textmatch.Normalize(w)] || notNames[textmatch.Normalize(w)] {
			return "", false
		}
	}
	return titleName(words), true
}

func titleName(words []string) string {
	// a Caser keeps state, so one per call
	caser := cases.Title(language.BrazilianPortuguese)
	out := make([]string, 0, len(words))
	for i, w := range words {
		low := strings.ToLower(w)
		if i > 0 && lowerConnectors[low] {
			out = append(out, low)
			continue
		}
		out = append(out, caser.String(w))
	}
	return strings.Join(out, " ")
}

func isNameToken(tok string) bool {
	letters := 0
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == '\'' || r == '-':
		default:
			return false
		}
	}
	return letters > 0
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// OracleSlots asks the oracle for each field and falls back to PatternSlots
// when the oracle fails or answers NONE.
type OracleSlots struct {
	oracle   contractx.Oracle
	fallback contractx.SlotExtractor
	opts     options
}

var _ contractx.SlotExtractor = (*OracleSlots)(nil)

func NewOracleSlots(oracle contractx.Oracle, fallback contractx.SlotExtractor, opts ...Option) (*OracleSlots, error) {
	if oracle == nil {
		return nil, errors.New("oracle is required")
	}
	if fallback == nil {
		fallback = PatternSlots{}
	}
	return &OracleSlots{oracle: oracle, fallback: fallback, opts: buildOptions(opts)}, nil
}

func (s *OracleSlots) ExtractName(ctx context.Context, req contractx.SlotRequest) (string, bool) {
	if reply, ok := s.ask(ctx, "extract_name", req.Excerpt, s.opts.prompts.Name); ok {
		if name := cleanName(reply); name != "" {
			return name, true
		}
	}
	return s.fallback.ExtractName(ctx, req)
}

func (s *OracleSlots) ExtractAddress(ctx context.Context, req contractx.SlotRequest) (string, bool) {
	if reply, ok := s.ask(ctx, "extract_address", req.Excerpt, s.opts.prompts.Address); ok {
		reply = strings.TrimRight(reply, ".")
		if len([]rune(reply)) >= 5 && strings.IndexFunc(reply, unicode.IsLetter) >= 0 {
			return reply, true
		}
	}
	return s.fallback.ExtractAddress(ctx, req)
}

func (s *OracleSlots) ExtractPayment(ctx context.Context, req contractx.SlotRequest) (string, bool) {
	if reply, ok := s.ask(ctx, "extract_payment", req.Excerpt, s.opts.prompts.Payment); ok {
		if method, ok := NormalizePayment(reply); ok {
			return method, true
		}
	}
	return s.fallback.ExtractPayment(ctx, req)
}

func (s *OracleSlots) ask(ctx context.Context, call, excerpt, instructions string) (string, bool) {
	if strings.TrimSpace(excerpt) == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.timeout)
	defer cancel()

	reply, err := s.oracle.ExtractField(ctx, excerpt, instructions)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("call", call).Msg("oracle slot extraction failed")
		metrics.RecordOracleFailure(call)
		return "", false
	}
	reply = strings.Trim(strings.TrimSpace(reply), "\"'`")
	if reply == "" || strings.EqualFold(strings.TrimRight(reply, "."), contractx.NoneSentinel) {
		return "", false
	}
	return reply, true
}
