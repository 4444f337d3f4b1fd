package contract

import "time"

type AgentType string

const (
	AgentTypeOracle AgentType = "oracle"
	AgentTypeSales  AgentType = "sales"
)

// Intent labels produced by the oracle.
const (
	IntentCartEdit     = "cart_edit"
	IntentProvideInfo  = "provide_info"
	IntentConfirmOrder = "confirm_order"
	IntentOther        = "other"
)

// NoneSentinel is the oracle's "nothing found" reply.
const NoneSentinel = "NONE"

// RawFlavor is a catalog row as stored; Price is unparsed.
type RawFlavor struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Ingredients string `json:"ingredients,omitempty"`
}

// MaxQuantity is the most units of one flavor a cart line may hold.
const MaxQuantity = 999

// Quantity is a flavor phrase with an optional leading count (0 = none).
// Zero is set when the phrase explicitly asked for zero units.
type Quantity struct {
	Flavor string `json:"flavor"`
	Count  int    `json:"quantity,omitempty"`
	Zero   bool   `json:"-"`
}

// Removal describes what to take out of the cart.
type Removal struct {
	Flavor string `json:"flavor"`
	Count  int    `json:"quantity_to_remove,omitempty"`
	All    bool   `json:"remove_all,omitempty"`
	Zero   bool   `json:"-"`
}

type SlotRequest struct {
	// Excerpt is the recent conversation rendered as "role: content" lines.
	Excerpt string
	// LastUserMessage is the latest user utterance.
	LastUserMessage string
	// Awaiting is true when the previous assistant turn asked for this slot.
	Awaiting bool
}

type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type OrderLine struct {
	Flavor     string `json:"flavor"`
	Quantity   int    `json:"quantity"`
	UnitCents  int64  `json:"unit_cents"`
	TotalCents int64  `json:"total_cents"`
}

type FinalizedOrder struct {
	SessionID     string      `json:"session_id"`
	CustomerName  string      `json:"customer_name"`
	Address       string      `json:"address"`
	PaymentMethod string      `json:"payment_method,omitempty"`
	Lines         []OrderLine `json:"lines"`
	TotalCents    int64       `json:"total_cents"`
	ConfirmedAt   time.Time   `json:"confirmed_at"`
}
