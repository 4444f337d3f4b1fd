package orchestratornode

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

// CollectPayment mirrors CollectAddress for the payment method. Success moves
// straight to awaiting confirmation.
func CollectPayment(ctx context.Context, in *TurnState, deps Deps) (Outcome, error) {
	sess := in.Session
	pr := &sess.Profile

	if pr.Stage.CollectingName() || pr.Stage == statex.StageAwaitingAddress || !present(pr.Address) {
		return Next(), nil
	}
	if present(pr.PaymentMethod) {
		if pr.Stage == statex.StageAwaitingPayment {
			pr.Stage = statex.StageAwaitingConfirmation
		}
		return Next(), nil
	}
	if sess.Cart.Empty() {
		return Next(), nil
	}

	awaiting := pr.Stage == statex.StageAwaitingPayment
	if method, ok := deps.Slots.ExtractPayment(ctx, slotRequest(sess, awaiting)); ok {
		pr.PaymentMethod = method
		pr.Stage = statex.StageAwaitingConfirmation
		deps.Cart.SetConfirmation(ctx, sess, false)
		zerolog.Ctx(ctx).Info().Str("payment_method", method).Msg("payment method collected")
		return Next(), nil
	}

	if flags := in.Intent.Classify(ctx, sess); flags.CartEdit {
		deps.Cart.SetConfirmation(ctx, sess, false)
		if awaiting {
			pr.Stage = statex.StageIdle
			metrics.RecordGuardAsk("collect_payment")
			return Ask(prompt.EditResumed), nil
		}
		return Next(), nil
	}

	msg := prompt.AskPaymentRetry
	if !awaiting {
		msg = prompt.AskPaymentInitial
	}
	pr.Stage = statex.StageAwaitingPayment
	metrics.RecordGuardAsk("collect_payment")
	return Ask(msg), nil
}
