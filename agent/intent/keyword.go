package intent

import (
	"context"
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/textmatch"
)

var (
	editWords = regexp.MustCompile(`\b(?:adiciona\w*|acrescenta\w*|coloca\w*|bota|poe|tira\w*|remove\w*|retira\w*|exclui\w*|troca\w*|muda\w*|altera\w*|cardapio|menu|sabor\w*|add|take\s+out)\b|\d+\s*(?:x\b|de\b|do\b|da\b|pasteis\b|pastel\b)`)

	// softEditWords signal an edit only when the message is not a confirmation.
	softEditWords = regexp.MustCompile(`\b(?:quero|queria|gostaria|mais|pastel|pasteis|want|also)\b`)

	confirmWords = regexp.MustCompile(`^(?:sim|s|ok|okay|yes|yep|beleza|fechado|perfeito|isso|correto|certo|confirmo|confirmado|confirma|pode)\b|\b(?:confirm\w*|pode\s+(?:fechar|mandar|enviar|confirmar)|fecha(?:r)?\s+o\s+pedido|ta\s+certo|esta\s+certo|tudo\s+certo|isso\s+mesmo|pode\s+ser|place\s+the\s+order)\b`)

	infoWords = regexp.MustCompile(`\b(?:meu\s+nome|me\s+chamo|sou\s+[oa]|endereco|rua|avenida|av|travessa|moro|entrega\w*|pix|cartao|credito|debito|dinheiro|my\s+name|address)\b`)

	negation = regexp.MustCompile(`^(?:nao|no|nope)\b`)
)

// KeywordClassifier labels messages with fixed Portuguese and English
// keywords. It backs deployments without a language model.
type KeywordClassifier struct{}

var _ contractx.IntentClassifier = KeywordClassifier{}

func (KeywordClassifier) ClassifyIntent(_ context.Context, message string) (string, error) {
	text := textmatch.Normalize(message)

	confirm := !negation.MatchString(text) && confirmWords.MatchString(text)

	var labels []string
	if editWords.MatchString(text) || (!confirm && softEditWords.MatchString(text)) {
		labels = append(labels, contractx.IntentCartEdit)
	}
	if confirm {
		labels = append(labels, contractx.IntentConfirmOrder)
	}
	if infoWords.MatchString(text) {
		labels = append(labels, contractx.IntentProvideInfo)
	}
	if len(labels) == 0 {
		return contractx.IntentOther, nil
	}
	return strings.Join(labels, ","), nil
}
