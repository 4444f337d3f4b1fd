package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/prompt"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

// ConfirmOrder closes the order once every slot is filled. An explicit
// confirmation without a cart edit confirms; otherwise the summary is shown.
func ConfirmOrder(ctx context.Context, in *TurnState, deps Deps) (Outcome, error) {
	sess := in.Session
	pr := &sess.Profile

	switch pr.Stage {
	case statex.StageNeedName, statex.StageAwaitingName, statex.StageAwaitingAddress, statex.StageAwaitingPayment:
		return Next(), nil
	}
	if !deps.Policy.SlotsComplete(*pr) {
		return Next(), nil
	}
	if sess.Cart.Empty() {
		// nothing to confirm; the agent can take a new order
		return Next(), nil
	}
	if deps.Cart.IsConfirmed(&sess.Cart) {
		if pr.Stage == statex.StageAwaitingConfirmation {
			pr.Stage = statex.StageComplete
		}
		return Next(), nil
	}

	flags := in.Intent.Classify(ctx, sess)
	if flags.CartEdit {
		return Next(), nil
	}
	if flags.ConfirmOrder {
		deps.Cart.SetConfirmation(ctx, sess, true)
		pr.Stage = statex.StageComplete
		zerolog.Ctx(ctx).Info().Int64("total_cents", int64(sess.Cart.Total())).Msg("order confirmed")
		metrics.RecordGuardAsk("confirm_order")
		return Ask(prompt.OrderConfirmed), nil
	}

	pr.Stage = statex.StageAwaitingConfirmation
	metrics.RecordGuardAsk("confirm_order")
	return Ask(orderSummary(sess, deps)), nil
}

func orderSummary(sess *statex.SessionState, deps Deps) string {
	var b strings.Builder
	b.WriteString(deps.Cart.Show(&sess.Cart))
	fmt.Fprintf(&b, "\nEndereço de entrega: %s", sess.Profile.Address)
	if present(sess.Profile.PaymentMethod) {
		fmt.Fprintf(&b, "\nPagamento: %s", sess.Profile.PaymentMethod)
	}
	b.WriteString("\n")
	b.WriteString(prompt.AskConfirmation)
	return b.String()
}
