package orchestratornode

import (
	"context"
	"fmt"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/agents/specialist"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/tool"
)

// AgentTurn hands the turn to the sales agent with the cart tools bound to
// this session, and records everything it produced.
func AgentTurn(ctx context.Context, in *TurnState, deps Deps) (Outcome, error) {
	if deps.Agent == nil {
		return Outcome{}, fmt.Errorf("%w: sales agent is not configured", contractx.ErrValidation)
	}

	infos, exec := tool.BuildForSession(contractx.AgentTypeSales, deps.Menu, deps.Cart, in.Session)
	msgs, err := deps.Agent.Respond(ctx, specialist.Request{
		Session: in.Session,
		Tools:   infos,
		Execute: exec,
	})
	if err != nil {
		return Outcome{}, err
	}
	if len(msgs) == 0 {
		return Outcome{}, fmt.Errorf("%w: sales agent returned no messages", contractx.ErrSchemaViolation)
	}

	in.Session.Append(msgs...)
	return Next(), nil
}
