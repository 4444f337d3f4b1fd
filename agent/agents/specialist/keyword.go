package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/tool"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/textmatch"
)

const (
	GreetingReply    = "Olá! Posso te mostrar o cardápio ou anotar seu pedido de pastéis. É só pedir!"
	ToolFailureReply = "Não consegui concluir essa ação agora. Pode tentar de novo?"
)

var (
	clearCart  = regexp.MustCompile(`\b(?:limpa\w*|esvazia\w*|zera\w*|recomeca\w*|clear)\b`)
	removeItem = regexp.MustCompile(`^(?:por favor\s*,?\s*)?(?:pode\s+)?(?:tira\w*|remov\w*|retira\w*|exclu\w*|cancel\w*|take\s+out|drop)\b`)
	viewCart   = regexp.MustCompile(`\b(?:carrinho|total|meu\s+pedido|quanto\s+(?:fica|deu|e)|cart)\b`)
	changeFor  = regexp.MustCompile(`\btroco\s+(?:para|pra|de)\s+(?:r\$\s*)?(\d+(?:[.,]\d{1,2})?)`)
	askMenu    = regexp.MustCompile(`\b(?:cardapio|menu|sabores|opcoes|quais)\b|o\s+que\s+(?:tem|voces\s+tem)`)
	askHave    = regexp.MustCompile(`^(?:voces\s+)?tem\s+(?:pastel\s+de\s+)?(.+?)\??$`)
	orderVerb  = regexp.MustCompile(`^(?:eu\s+)?(?:(?:quero|queria|gostaria\s+de|me\s+ve|manda|adiciona\w*|acrescenta\w*|coloca|bota|poe|add|i\s+want|mais)\s+)+`)
	leadCount  = regexp.MustCompile(`^(?:\d+|um|uma|dois|duas|tres|quatro|cinco|seis|sete|oito|nove|dez)\s`)
)

// KeywordAgent drives the sales tools from fixed keywords. It answers turns
// when no language model is configured.
type KeywordAgent struct{}

var _ Agent = KeywordAgent{}

func (KeywordAgent) Respond(ctx context.Context, req Request) ([]*schema.Message, error) {
	if req.Session == nil {
		return nil, fmt.Errorf("%w: session is required", contractx.ErrValidation)
	}
	execute := req.Execute
	if execute == nil {
		execute = tool.DefaultExecutor(contractx.AgentTypeSales)
	}

	message := strings.TrimSpace(req.Session.LastUserMessage())
	name, args := planKeywordTool(message)
	if name == "" {
		return []*schema.Message{schema.AssistantMessage(greeting(req.Session), nil)}, nil
	}

	callID := fmt.Sprintf("kw_%d", len(req.Session.Transcript))
	call := schema.AssistantMessage("", []schema.ToolCall{{
		ID:       callID,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: encodeArgs(args)},
	}})

	res, err := execute(ctx, name, args)
	if err != nil {
		res = contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	result := schema.ToolMessage(encodeToolResult(res), callID)
	reply := schema.AssistantMessage(renderKeywordReply(res), nil)
	return []*schema.Message{call, result, reply}, nil
}

// planKeywordTool maps one utterance to at most one tool call.
func planKeywordTool(message string) (string, map[string]any) {
	text := textmatch.Normalize(message)
	if text == "" {
		return "", nil
	}
	switch {
	case clearCart.MatchString(text):
		return tool.ToolCartClear, map[string]any{}
	case removeItem.MatchString(text):
		return tool.ToolCartRemove, map[string]any{"flavor": message}
	case changeFor.MatchString(text):
		m := changeFor.FindStringSubmatch(text)
		return tool.ToolCartChange, map[string]any{"paid": m[1]}
	case viewCart.MatchString(text):
		return tool.ToolCartView, map[string]any{}
	case askMenu.MatchString(text):
		return tool.ToolMenuSearch, map[string]any{"query": ""}
	case askHave.MatchString(text):
		m := askHave.FindStringSubmatch(text)
		return tool.ToolMenuSearch, map[string]any{"query": m[1]}
	case orderVerb.MatchString(text):
		return tool.ToolCartAdd, map[string]any{"flavor": orderVerb.ReplaceAllString(text, "")}
	case leadCount.MatchString(text):
		return tool.ToolCartAdd, map[string]any{"flavor": text}
	}
	return "", nil
}

func renderKeywordReply(res contractx.ToolResult) string {
	if res.Error != "" {
		if res.Tool == tool.ToolMenuSearch {
			return "Não encontrei esse sabor no cardápio. Quer ver as opções?"
		}
		return ToolFailureReply
	}
	switch out := res.Result.(type) {
	case tool.CartOutput:
		if out.Items == 0 {
			return out.Message
		}
		return fmt.Sprintf("%s. Total do carrinho: %s.", strings.TrimSuffix(out.Message, "."), out.Total)
	case []tool.MenuItem:
		parts := make([]string, 0, len(out))
		for _, it := range out {
			parts = append(parts, fmt.Sprintf("%s (%s)", it.Name, it.Price))
		}
		return "Temos: " + strings.Join(parts, ", ") + "."
	case tool.ChangeOutput:
		return fmt.Sprintf("O total é %s. Para %s, o troco é %s.", out.Total, out.Paid, out.Change)
	}
	return ToolFailureReply
}

func greeting(sess *statex.SessionState) string {
	if sess.Profile.Name != "" {
		return fmt.Sprintf("Olá, %s! Posso te mostrar o cardápio ou anotar seu pedido de pastéis.", sess.Profile.Name)
	}
	return GreetingReply
}

func encodeArgs(args map[string]any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
