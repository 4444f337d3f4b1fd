package orchestratornode

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

// CollectName asks for the customer's name once the cart has items.
func CollectName(ctx context.Context, in *TurnState, deps Deps) (Outcome, error) {
	sess := in.Session
	pr := &sess.Profile

	if sess.Cart.Empty() {
		return Next(), nil
	}
	if present(pr.Name) {
		if pr.Stage.CollectingName() {
			pr.Stage = statex.StageIdle
		}
		return Next(), nil
	}

	awaiting := pr.Stage == statex.StageAwaitingName
	if name, ok := deps.Slots.ExtractName(ctx, slotRequest(sess, awaiting)); ok {
		pr.Name = name
		pr.Stage = statex.StageIdle
		zerolog.Ctx(ctx).Info().Str("name", name).Msg("customer name collected")
		return Next(), nil
	}

	msg := prompt.AskNameRetry
	if pr.Stage == statex.StageNeedName {
		msg = prompt.AskNameInitial
	}
	pr.Stage = statex.StageAwaitingName
	metrics.RecordGuardAsk("collect_name")
	return Ask(msg), nil
}
