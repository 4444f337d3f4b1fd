package orchestratornode

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

// CollectAddress asks for the delivery address after the name. A fresh
// extraction is tried before the intent; a cart edit while the address is
// being asked for drops back to idle so the customer can keep editing.
func CollectAddress(ctx context.Context, in *TurnState, deps Deps) (Outcome, error) {
	sess := in.Session
	pr := &sess.Profile

	if pr.Stage.CollectingName() {
		return Next(), nil
	}
	if present(pr.Address) {
		if pr.Stage == statex.StageAwaitingAddress {
			pr.Stage = statex.StageIdle
		}
		return Next(), nil
	}
	if sess.Cart.Empty() {
		return Next(), nil
	}

	awaiting := pr.Stage == statex.StageAwaitingAddress
	if addr, ok := deps.Slots.ExtractAddress(ctx, slotRequest(sess, awaiting)); ok {
		pr.Address = addr
		pr.Stage = statex.StageIdle
		deps.Cart.SetConfirmation(ctx, sess, false)
		zerolog.Ctx(ctx).Info().Msg("delivery address collected")
		return Next(), nil
	}

	if flags := in.Intent.Classify(ctx, sess); flags.CartEdit {
		deps.Cart.SetConfirmation(ctx, sess, false)
		if awaiting {
			pr.Stage = statex.StageIdle
			metrics.RecordGuardAsk("collect_address")
			return Ask(prompt.EditResumed), nil
		}
		return Next(), nil
	}

	msg := prompt.AskAddressRetry
	if !awaiting {
		msg = prompt.AskAddressInitial
	}
	pr.Stage = statex.StageAwaitingAddress
	metrics.RecordGuardAsk("collect_address")
	return Ask(msg), nil
}
