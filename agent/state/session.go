package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
)

// SessionState is everything one conversation owns: the transcript, the
// customer profile (including the dialogue stage) and the cart.
type SessionState struct {
	SessionID string `json:"session_id"`

	Transcript []*schema.Message `json:"transcript,omitempty"`
	Profile    Profile           `json:"profile"`
	Cart       Cart              `json:"cart"`

	// LastIntent is the primary intent of the most recent classified turn.
	LastIntent string `json:"last_intent,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Stage string

const (
	StageNeedName             Stage = "need_name"
	StageAwaitingName         Stage = "awaiting_name"
	StageIdle                 Stage = "idle"
	StageAwaitingAddress      Stage = "awaiting_address"
	StageAwaitingPayment      Stage = "awaiting_payment"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	StageComplete             Stage = "complete"
)

func (s Stage) Valid() bool {
	switch s {
	case StageNeedName, StageAwaitingName, StageIdle, StageAwaitingAddress,
		StageAwaitingPayment, StageAwaitingConfirmation, StageComplete:
		return true
	default:
		return false
	}
}

// CollectingName reports whether the name slot is still open.
func (s Stage) CollectingName() bool {
	return s == StageNeedName || s == StageAwaitingName
}

type Profile struct {
	Name          string `json:"customer_name,omitempty"`
	Address       string `json:"delivery_address,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Stage         Stage  `json:"info_stage"`
}

type CartItem struct {
	Flavor    string `json:"flavor"`
	UnitPrice Money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (i CartItem) Subtotal() Money {
	return i.UnitPrice.Mul(i.Quantity)
}

type Cart struct {
	Items     []CartItem `json:"items,omitempty"`
	Confirmed bool       `json:"order_confirmed"`
}

func (c *Cart) Empty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) Total() Money {
	if c == nil {
		return 0
	}
	var total Money
	for _, it := range c.Items {
		total += it.Subtotal()
	}
	return total
}

var (
	ErrInvalidStage    = errors.New("invalid dialogue stage")
	ErrInvalidCartItem = errors.New("invalid cart item")
)

func NewSessionState(sessionID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Profile:   DefaultProfile(),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func DefaultProfile() Profile {
	return Profile{Stage: StageNeedName}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Append adds messages to the transcript in order.
func (s *SessionState) Append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			s.Transcript = append(s.Transcript, m)
		}
	}
}

// LastUserMessage returns the latest user message content, or "".
func (s *SessionState) LastUserMessage() string {
	return lastByRole(s.Transcript, schema.User)
}

// LastAssistantMessage returns the latest non-empty assistant content, or "".
func (s *SessionState) LastAssistantMessage() string {
	return lastByRole(s.Transcript, schema.Assistant)
}

func lastByRole(msgs []*schema.Message, role schema.RoleType) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil || m.Role != role {
			continue
		}
		if role == schema.Assistant && strings.TrimSpace(m.Content) == "" {
			// tool-call-only assistant messages carry no utterance
			continue
		}
		return m.Content
	}
	return ""
}

// Excerpt renders the last n user/assistant messages as "role: content" lines.
func (s *SessionState) Excerpt(n int) string {
	var lines []string
	for i := len(s.Transcript) - 1; i >= 0 && len(lines) < n; i-- {
		m := s.Transcript[i]
		if m == nil || (m.Role != schema.User && m.Role != schema.Assistant) {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, content))
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

// Clone returns a deep copy so a turn can run without touching stored state.
func (s *SessionState) Clone() (*SessionState, error) {
	if s == nil {
		return nil, ErrNilSessionState
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session state: %w", err)
	}
	var out SessionState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	return &out, nil
}

func (s *SessionState) Validate() error {
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if !s.Profile.Stage.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, s.Profile.Stage)
	}
	seen := make(map[string]struct{}, len(s.Cart.Items))
	for _, it := range s.Cart.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: %s has quantity %d", ErrInvalidCartItem, it.Flavor, it.Quantity)
		}
		key := strings.ToLower(it.Flavor)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate flavor %s", ErrInvalidCartItem, it.Flavor)
		}
		seen[key] = struct{}{}
	}
	return nil
}
