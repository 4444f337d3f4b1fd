package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
)

// FinalizeReply picks this turn's last assistant utterance and decides the
// transition. The intent is classified here if no guard needed it.
func FinalizeReply(ctx context.Context, in *TurnState) (TurnOutput, error) {
	if in == nil || in.Session == nil {
		return TurnOutput{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	reply := ""
	msgs := in.Session.Transcript
	for i := len(msgs) - 1; i >= in.Mark && i >= 0; i-- {
		m := msgs[i]
		if m != nil && m.Role == schema.Assistant && strings.TrimSpace(m.Content) != "" {
			reply = strings.TrimSpace(m.Content)
			break
		}
	}
	if reply == "" {
		return TurnOutput{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}

	label := in.Intent.Classify(ctx, in.Session).Primary()
	in.Session.LastIntent = label

	transition := TransitionContinue
	if !in.WasConfirmed && in.Session.Cart.Confirmed {
		transition = TransitionFinalize
	}
	return TurnOutput{Reply: reply, Transition: transition, Intent: label}, nil
}
