package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/extract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	repeat    *schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.repeat != nil {
		return f.repeat, nil
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func toolCall(id, name, args string) schema.ToolCall {
	return schema.ToolCall{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}
}

func newTurn(t *testing.T, userText string) Request {
	t.Helper()
	resolver, err := catalog.NewResolver(catalog.DefaultMenu())
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	engine, err := cart.NewEngine(resolver, extract.NewPatternExtractor(), nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	sess := statex.NewSessionState("agent-test", time.Now())
	sess.Append(schema.UserMessage(userText))
	infos, exec := tool.BuildForSession(contractx.AgentTypeSales, resolver, engine, sess)
	return Request{Session: sess, Tools: infos, Execute: exec}
}

func TestOracleClassifyIntent(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{{Role: schema.Assistant, Content: "  cart_edit \n"}}}
	oracle, err := newOracle(context.Background(), fake, "intent prompt", time.Second)
	if err != nil {
		t.Fatalf("newOracle() error = %v", err)
	}

	got, err := oracle.ClassifyIntent(context.Background(), "quero 2 de carne")
	if err != nil {
		t.Fatalf("ClassifyIntent() error = %v", err)
	}
	if got != contractx.IntentCartEdit {
		t.Fatalf("ClassifyIntent() = %q, want %q", got, contractx.IntentCartEdit)
	}
	in := fake.inputs[0]
	if len(in) != 2 || in[0].Content != "intent prompt" || in[1].Content != "quero 2 de carne" {
		t.Fatalf("unexpected oracle input: %#v", in)
	}
}

func TestOracleExtractFieldKeepsInstructionsVerbatim(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{{Role: schema.Assistant, Content: `{"flavor":"Carne","quantity":2}`}}}
	oracle, err := newOracle(context.Background(), fake, "intent prompt", time.Second)
	if err != nil {
		t.Fatalf("newOracle() error = %v", err)
	}

	instructions := `Reply with {"flavor": "...", "quantity": 1}. Never echo {{.input}}.`
	got, err := oracle.ExtractField(context.Background(), "2 de {carne}", instructions)
	if err != nil {
		t.Fatalf("ExtractField() error = %v", err)
	}
	if got != `{"flavor":"Carne","quantity":2}` {
		t.Fatalf("ExtractField() = %q", got)
	}
	in := fake.inputs[0]
	if len(in) != 2 || in[0].Role != schema.System || in[0].Content != instructions || in[1].Content != "2 de {carne}" {
		t.Fatalf("unexpected oracle input: %#v", in)
	}
}

func TestOracleExtractFieldErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{err: errors.New("boom")}
	oracle, err := newOracle(context.Background(), fake, "intent prompt", time.Second)
	if err != nil {
		t.Fatalf("newOracle() error = %v", err)
	}

	_, err = oracle.ExtractField(context.Background(), "user: oi", "extract the name")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("ExtractField() error = %v, want ErrModelInvoke", err)
	}

	_, err = oracle.ExtractField(context.Background(), "user: oi", "  ")
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("ExtractField() with empty instructions error = %v, want ErrPromptMissing", err)
	}
}

func TestSalesAgentRunsToolsThenReplies(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{toolCall("call_1", tool.ToolCartAdd, `{"flavor":"frango","quantity":2}`)}),
			schema.AssistantMessage("Anotei 2 pastéis de Frango!", nil),
		},
	}
	agent, err := newSalesAgent(context.Background(), fake, "sales prompt", 3)
	if err != nil {
		t.Fatalf("newSalesAgent() error = %v", err)
	}

	req := newTurn(t, "quero 2 de frango")
	out, err := agent.Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 produced messages, got %d", len(out))
	}
	if out[1].Role != schema.Tool || out[1].ToolCallID != "call_1" {
		t.Fatalf("unexpected tool message: %#v", out[1])
	}
	if !strings.Contains(out[1].Content, "R$54,00") {
		t.Fatalf("tool message should carry the total: %s", out[1].Content)
	}
	if out[2].Content != "Anotei 2 pastéis de Frango!" {
		t.Fatalf("unexpected reply: %q", out[2].Content)
	}
	if items := req.Session.Cart.Items; len(items) != 1 || items[0].Flavor != "Frango" || items[0].Quantity != 2 {
		t.Fatalf("cart = %+v", items)
	}

	second := fake.inputs[1]
	if last := second[len(second)-1]; last.Role != schema.Tool {
		t.Fatalf("second step must end with the tool result, got %s", last.Role)
	}
	if !strings.Contains(fake.inputs[0][1].Content, "Carrinho vazio") {
		t.Fatalf("state note missing: %q", fake.inputs[0][1].Content)
	}
}

func TestSalesAgentToolErrorsStayInConversation(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				toolCall("call_1", "math.evaluate", `{"expression":"1+1"}`),
				toolCall("call_2", tool.ToolCartAdd, `{not json`),
			}),
			schema.AssistantMessage("Desculpe, não entendi o sabor.", nil),
		},
	}
	agent, err := newSalesAgent(context.Background(), fake, "sales prompt", 3)
	if err != nil {
		t.Fatalf("newSalesAgent() error = %v", err)
	}

	out, err := agent.Respond(context.Background(), newTurn(t, "quero algo"))
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 produced messages, got %d", len(out))
	}
	for _, m := range out[1:3] {
		if !strings.Contains(m.Content, `"error"`) {
			t.Fatalf("expected tool error content, got %s", m.Content)
		}
	}
}

func TestSalesAgentStepLimit(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		repeat: schema.AssistantMessage("", []schema.ToolCall{toolCall("call_x", tool.ToolCartView, `{}`)}),
	}
	agent, err := newSalesAgent(context.Background(), fake, "sales prompt", 2)
	if err != nil {
		t.Fatalf("newSalesAgent() error = %v", err)
	}

	_, err = agent.Respond(context.Background(), newTurn(t, "mostra o carrinho"))
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Respond() error = %v, want ErrSchemaViolation", err)
	}
	if len(fake.inputs) != 2 {
		t.Fatalf("model called %d times, want 2", len(fake.inputs))
	}
}

func TestSalesAgentEmptyReply(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{responses: []*schema.Message{schema.AssistantMessage("  ", nil)}}
	agent, err := newSalesAgent(context.Background(), fake, "sales prompt", 2)
	if err != nil {
		t.Fatalf("newSalesAgent() error = %v", err)
	}
	if _, err := agent.Respond(context.Background(), newTurn(t, "oi")); !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("Respond() error = %v, want ErrSchemaViolation", err)
	}
}

func TestNewSalesAgentRequiresPrompt(t *testing.T) {
	t.Parallel()

	_, err := newSalesAgent(context.Background(), &fakeToolCallingModel{}, " ", 2)
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("newSalesAgent() error = %v, want ErrPromptMissing", err)
	}
}

func TestPlanKeywordTool(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		tool string
	}{
		{in: "Quero 2 de frango", tool: tool.ToolCartAdd},
		{in: "3 pastéis de queijo", tool: tool.ToolCartAdd},
		{in: "tira o de carne", tool: tool.ToolCartRemove},
		{in: "pode limpar o carrinho", tool: tool.ToolCartClear},
		{in: "quanto fica?", tool: tool.ToolCartView},
		{in: "qual o cardápio?", tool: tool.ToolMenuSearch},
		{in: "vocês tem camarão?", tool: tool.ToolMenuSearch},
		{in: "troco para 50", tool: tool.ToolCartChange},
		{in: "bom dia", tool: ""},
	}
	for _, tc := range cases {
		got, _ := planKeywordTool(tc.in)
		if got != tc.tool {
			t.Fatalf("planKeywordTool(%q) = %q, want %q", tc.in, got, tc.tool)
		}
	}
}

func TestKeywordAgentAddsToCart(t *testing.T) {
	t.Parallel()

	req := newTurn(t, "Quero 2 de frango")
	out, err := KeywordAgent{}.Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected call, result and reply, got %d messages", len(out))
	}
	reply := out[len(out)-1].Content
	if !strings.Contains(reply, "Total do carrinho: R$54,00") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(req.Session.Cart.Items) != 1 {
		t.Fatalf("cart = %+v", req.Session.Cart.Items)
	}
}

func TestKeywordAgentGreets(t *testing.T) {
	t.Parallel()

	req := newTurn(t, "bom dia")
	req.Session.Profile.Name = "Ana"
	out, err := KeywordAgent{}.Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if len(out) != 1 || !strings.Contains(out[0].Content, "Ana") {
		t.Fatalf("unexpected greeting: %#v", out)
	}
}

func TestKeywordAgentMenu(t *testing.T) {
	t.Parallel()

	out, err := KeywordAgent{}.Respond(context.Background(), newTurn(t, "qual o cardápio?"))
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	reply := out[len(out)-1].Content
	if !strings.HasPrefix(reply, "Temos: Carne (R$26,00)") {
		t.Fatalf("unexpected menu reply: %q", reply)
	}
}

func TestOfflineRegistry(t *testing.T) {
	t.Parallel()

	reg := NewOfflineRegistry()
	if reg.Online() || reg.Oracle() != nil {
		t.Fatal("offline registry must not carry an oracle")
	}
	if _, ok := reg.Sales().(KeywordAgent); !ok {
		t.Fatalf("offline sales agent = %T", reg.Sales())
	}
}
