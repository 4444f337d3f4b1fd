package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/tool"
)

const (
	defaultMaxToolSteps = 4
	defaultHistoryLimit = 20
)

// Request is one agent turn: the session it runs on and the tools bound to it.
type Request struct {
	Session *statex.SessionState
	Tools   []*schema.ToolInfo
	Execute tool.Executor
}

// Agent answers the customer once every guard has passed. It returns the
// messages it produced, in order; the last one is the reply.
type Agent interface {
	Respond(ctx context.Context, req Request) ([]*schema.Message, error)
}

type salesAgent struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
	maxSteps     int
	historyLimit int
	allowedTools map[string]struct{}
}

var _ Agent = (*salesAgent)(nil)

func newSalesAgent(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	maxSteps int,
) (*salesAgent, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: sales prompt", contractx.ErrPromptMissing)
	}
	if maxSteps <= 0 {
		maxSteps = defaultMaxToolSteps
	}

	infos := tool.InfosForAgent(contractx.AgentTypeSales)
	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, contractx.AgentTypeSales, err)
	}
	runner, err := compileSalesStepGraph(ctx, toolModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	allowed := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		allowed[info.Name] = struct{}{}
	}

	return &salesAgent{
		runner:       runner,
		systemPrompt: systemPrompt,
		maxSteps:     maxSteps,
		historyLimit: defaultHistoryLimit,
		allowedTools: allowed,
	}, nil
}

// Respond loops model -> tools until the model answers without tool calls or
// the step budget runs out.
func (s *salesAgent) Respond(ctx context.Context, req Request) ([]*schema.Message, error) {
	if req.Session == nil {
		return nil, fmt.Errorf("%w: session is required", contractx.ErrValidation)
	}
	execute := req.Execute
	if execute == nil {
		execute = tool.DefaultExecutor(contractx.AgentTypeSales)
	}

	msgs := s.conversation(req.Session)
	var produced []*schema.Message

	for step := 0; step < s.maxSteps; step++ {
		out, err := s.runner.Invoke(ctx, msgs)
		if err != nil {
			return nil, fmt.Errorf("%w: sales invoke: %v", contractx.ErrModelInvoke, err)
		}
		if out == nil {
			return nil, fmt.Errorf("%w: empty sales response", contractx.ErrSchemaViolation)
		}

		if len(out.ToolCalls) == 0 {
			content := strings.TrimSpace(out.Content)
			if content == "" {
				return nil, fmt.Errorf("%w: sales reply is empty", contractx.ErrSchemaViolation)
			}
			return append(produced, schema.AssistantMessage(content, nil)), nil
		}

		call := schema.AssistantMessage(out.Content, out.ToolCalls)
		produced = append(produced, call)
		msgs = append(msgs, call)

		for _, tc := range out.ToolCalls {
			result := s.runTool(ctx, execute, tc)
			msg := schema.ToolMessage(encodeToolResult(result), tc.ID)
			produced = append(produced, msg)
			msgs = append(msgs, msg)
		}
	}

	return nil, fmt.Errorf("%w: tool step limit %d reached", contractx.ErrSchemaViolation, s.maxSteps)
}

func (s *salesAgent) runTool(ctx context.Context, execute tool.Executor, call schema.ToolCall) contractx.ToolResult {
	name := strings.TrimSpace(call.Function.Name)
	logger := zerolog.Ctx(ctx).With().Str("tool", name).Logger()

	if _, ok := s.allowedTools[name]; !ok {
		logger.Warn().Msg("model requested unknown tool")
		return contractx.ToolResult{Tool: name, Error: fmt.Sprintf("tool=%s is not allowed", name)}
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			logger.Warn().Err(err).Msg("invalid tool arguments")
			return contractx.ToolResult{Tool: name, Error: "invalid arguments: " + err.Error()}
		}
	}

	res, err := execute(ctx, name, args)
	if err != nil {
		logger.Warn().Err(err).Msg("tool execution failed")
		return contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	logger.Debug().Bool("ok", res.Error == "").Msg("tool executed")
	return res
}

// conversation is the system prompt, a state note and the recent dialogue.
// Earlier tool traffic is dropped; the state note carries its effect.
func (s *salesAgent) conversation(sess *statex.SessionState) []*schema.Message {
	msgs := []*schema.Message{
		schema.SystemMessage(s.systemPrompt),
		schema.SystemMessage(stateNote(sess)),
	}

	var history []*schema.Message
	for _, m := range sess.Transcript {
		if m == nil || len(m.ToolCalls) > 0 || strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Role != schema.User && m.Role != schema.Assistant {
			continue
		}
		history = append(history, m)
	}
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	return append(msgs, history...)
}

func stateNote(sess *statex.SessionState) string {
	var b strings.Builder
	b.WriteString("Estado atual do atendimento.\n")
	if sess.Profile.Name != "" {
		fmt.Fprintf(&b, "Cliente: %s\n", sess.Profile.Name)
	}
	if sess.Profile.Address != "" {
		fmt.Fprintf(&b, "Endereço: %s\n", sess.Profile.Address)
	}
	if sess.Profile.PaymentMethod != "" {
		fmt.Fprintf(&b, "Pagamento: %s\n", sess.Profile.PaymentMethod)
	}
	if sess.Cart.Empty() {
		b.WriteString("Carrinho vazio.")
	} else {
		b.WriteString(cart.Render(cart.TakeSnapshot(&sess.Cart)))
	}
	return b.String()
}

func encodeToolResult(res contractx.ToolResult) string {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"error":"unencodable result"}`, res.Tool)
	}
	return string(raw)
}
