package orchestratornode

import "context"

// Outcome is a guard verdict: Ask ends the turn with Message, Next moves on.
type Outcome struct {
	ask     bool
	Message string
}

func Ask(message string) Outcome {
	return Outcome{ask: true, Message: message}
}

func Next() Outcome {
	return Outcome{}
}

func (o Outcome) IsAsk() bool {
	return o.ask
}

type GuardFunc func(ctx context.Context, in *TurnState, deps Deps) (Outcome, error)

type Guard struct {
	Name string
	Run  GuardFunc
}

// Pipeline returns the guards in execution order. The payment guard is only
// present when the policy requires a payment method.
func Pipeline(requirePayment bool) []Guard {
	guards := []Guard{
		{Name: "collect_name", Run: CollectName},
		{Name: "collect_address", Run: CollectAddress},
	}
	if requirePayment {
		guards = append(guards, Guard{Name: "collect_payment", Run: CollectPayment})
	}
	return append(guards,
		Guard{Name: "confirm_order", Run: ConfirmOrder},
		Guard{Name: "agent_turn", Run: AgentTurn},
	)
}
