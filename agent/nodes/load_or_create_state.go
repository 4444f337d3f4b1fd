package orchestratornode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/intent"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

// LoadOrCreateState loads the session, records the user message and binds
// a fresh intent cache to the turn.
func LoadOrCreateState(
	ctx context.Context,
	in *TurnState,
	store statex.Store,
	classifier contractx.IntentClassifier,
	classifyTimeout time.Duration,
) (*TurnState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
	}

	st, err := loadOrCreateState(ctx, store, in.SessionID, in.Now)
	if err != nil {
		return nil, err
	}
	cache, err := intent.NewCache(classifier, classifyTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}

	in.Session = st
	in.Intent = cache
	in.WasConfirmed = st.Cart.Confirmed
	in.Mark = len(st.Transcript)
	st.Append(schema.UserMessage(in.Text))
	return in, nil
}

func loadOrCreateState(
	ctx context.Context,
	store statex.Store,
	sessionID string,
	now time.Time,
) (*statex.SessionState, error) {
	st, err := store.Load(ctx, sessionID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		return nil, err
	}
	return statex.NewSessionState(sessionID, now), nil
}
