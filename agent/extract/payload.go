package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
)

type quantityPayload struct {
	Flavor   string          `json:"flavor"`
	Quantity json.RawMessage `json:"quantity"`
}

type removalPayload struct {
	Flavor           string          `json:"flavor"`
	QuantityToRemove json.RawMessage `json:"quantity_to_remove"`
	RemoveAll        bool            `json:"remove_all"`
}

var (
	quantityParser = newContentParser[quantityPayload]()
	removalParser  = newContentParser[removalPayload]()
)

func newContentParser[T any]() schema.MessageParser[T] {
	return schema.NewMessageJSONParser[T](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})
}

// decodePayload parses the single JSON object embedded in an oracle reply.
// Replies without one, or that do not fit T, yield an error and no partial
// data is used by callers.
func decodePayload[T any](ctx context.Context, parser schema.MessageParser[T], reply string) (T, error) {
	var zero T
	s := strings.TrimSpace(reply)
	if s == "" || strings.EqualFold(s, contractx.NoneSentinel) {
		return zero, contractx.ErrNoExtraction
	}
	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end <= start {
			return zero, fmt.Errorf("%w: no json object in reply", contractx.ErrNoExtraction)
		}
		s = s[start : end+1]
	}

	v, err := parser.Parse(ctx, schema.AssistantMessage(s, nil))
	if err != nil {
		return zero, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
	}
	return v, nil
}

// positiveInt coerces a JSON number or numeric string to a count in
// [1, MaxQuantity+1]; anything above the cap saturates so the cart can refuse
// it. Any other value yields 0.
func positiveInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch x := v.(type) {
	case float64:
		if x >= 1 {
			return saturate(x)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && f >= 1 && f == float64(int64(f)) {
			return saturate(f)
		}
	}
	return 0
}

func saturate(f float64) int {
	if f > contractx.MaxQuantity {
		return contractx.MaxQuantity + 1
	}
	return int(f)
}
