package orchestratornode

import (
	"errors"
	"time"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/agents/specialist"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/intent"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/profile"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/tool"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

const (
	TransitionContinue = "continue"
	TransitionFinalize = "finalize"
)

type TurnInput struct {
	SessionID string
	Text      string
}

type TurnOutput struct {
	Reply      string
	Transition string
	Intent     string
}

// TurnState is the working set of one turn. Session is a private copy; it
// reaches the store only if the whole turn succeeds.
type TurnState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.SessionState
	Intent  *intent.Cache

	// WasConfirmed is the cart confirmation flag as loaded.
	WasConfirmed bool
	// Mark is the transcript length before this turn's user message.
	Mark int
	// AskedBy names the guard that ended the turn, empty when the agent ran.
	AskedBy string
}

// Deps are the collaborators guards act through.
type Deps struct {
	Cart   *cart.Engine
	Slots  contractx.SlotExtractor
	Policy profile.Policy
	Agent  specialist.Agent
	Menu   tool.Menu
}
