package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

func ValidateAndSaveState(
	ctx context.Context,
	in *TurnState,
	store statex.Store,
) (*TurnState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: turn session is nil", contractx.ErrValidation)
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}
