package tool

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/cart"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

const (
	ToolMenuSearch = "menu.search"
	ToolCartAdd    = "cart.add"
	ToolCartRemove = "cart.remove"
	ToolCartView   = "cart.view"
	ToolCartClear  = "cart.clear"
	ToolCartChange = "cart.change"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

type Menu interface {
	Search(ctx context.Context, query string) ([]catalog.Entry, error)
}

// CartOps is the slice of the cart engine the agent may drive.
type CartOps interface {
	Add(ctx context.Context, sess *statex.SessionState, phrase string, explicitQty int) string
	Remove(ctx context.Context, sess *statex.SessionState, phrase string, explicitQty int) string
	Clear(ctx context.Context, sess *statex.SessionState) string
	Show(c *statex.Cart) string
	Snapshot(c *statex.Cart) cart.Snapshot
}

type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Ingredients string `json:"ingredients,omitempty"`
}

type CartOutput struct {
	Message string `json:"message"`
	Items   int    `json:"items"`
	Total   string `json:"total"`
}

type ChangeOutput struct {
	Total  string `json:"total"`
	Paid   string `json:"paid"`
	Change string `json:"change"`
}

// BuildForSession returns the tools of agentType bound to one session's cart.
func BuildForSession(agentType contractx.AgentType, menu Menu, carts CartOps, sess *statex.SessionState) ([]*schema.ToolInfo, Executor) {
	infos := InfosForAgent(agentType)
	if len(infos) == 0 || menu == nil || carts == nil || sess == nil {
		return infos, DefaultExecutor(agentType)
	}
	return infos, NewExecutor(menu, carts, sess)
}

func NewExecutor(menu Menu, carts CartOps, sess *statex.SessionState) Executor {
	fallback := DefaultExecutor(contractx.AgentTypeSales)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		var (
			out contractx.ToolResult
			err error
		)
		switch tool {
		case ToolMenuSearch:
			out, err = searchMenu(ctx, menu, tool, args)
		case ToolCartAdd:
			out = mutateCart(ctx, carts, sess, tool, args, carts.Add)
		case ToolCartRemove:
			out = mutateCart(ctx, carts, sess, tool, args, carts.Remove)
		case ToolCartView:
			out = cartResult(carts, sess, tool, carts.Show(&sess.Cart))
		case ToolCartClear:
			out = cartResult(carts, sess, tool, carts.Clear(ctx, sess))
		case ToolCartChange:
			out = computeChange(carts, sess, tool, args)
		default:
			out, err = fallback(ctx, tool, args)
		}
		metrics.RecordToolCall(tool, err == nil && out.Error == "")
		return out, err
	}
}

func DefaultExecutor(agentType contractx.AgentType) Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", tool, agentType),
		}, nil
	}
}

func InfosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	if agentType != contractx.AgentTypeSales {
		return nil
	}
	return []*schema.ToolInfo{
		{
			Name: ToolMenuSearch,
			Desc: "Search the pastel menu. Returns flavors with price and ingredients. An empty query lists the whole menu.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {Type: schema.String, Desc: "Flavor or ingredient to look for"},
			}),
		},
		{
			Name: ToolCartAdd,
			Desc: "Add pastéis of one flavor to the customer's cart.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"flavor":   {Type: schema.String, Desc: "Flavor as the customer said it", Required: true},
				"quantity": {Type: schema.Integer, Desc: "How many to add, default 1"},
			}),
		},
		{
			Name: ToolCartRemove,
			Desc: "Remove a flavor from the cart, or reduce its quantity.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"flavor":   {Type: schema.String, Desc: "Flavor to remove", Required: true},
				"quantity": {Type: schema.Integer, Desc: "How many to remove; omit to remove all of that flavor"},
			}),
		},
		{
			Name:        ToolCartView,
			Desc:        "Show the cart items and the total.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name:        ToolCartClear,
			Desc:        "Empty the cart so the customer can start over.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolCartChange,
			Desc: "Compute the change (troco) for a cash payment against the cart total.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"paid": {Type: schema.String, Desc: "Amount the customer will hand over, e.g. 50 or 50,00", Required: true},
			}),
		},
	}
}

func searchMenu(ctx context.Context, menu Menu, tool string, args map[string]any) (contractx.ToolResult, error) {
	query, _ := stringArg(args, "query")
	entries, err := menu.Search(ctx, query)
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: "menu is unavailable right now"}, nil
	}
	items := make([]MenuItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, MenuItem{Name: e.Name, Price: e.Price.String(), Ingredients: e.Ingredients})
	}
	if len(items) == 0 {
		return contractx.ToolResult{Tool: tool, Error: fmt.Sprintf("no flavor matches %q", query)}, nil
	}
	return contractx.ToolResult{Tool: tool, Result: items}, nil
}

type cartMutation func(ctx context.Context, sess *statex.SessionState, phrase string, explicitQty int) string

func mutateCart(ctx context.Context, carts CartOps, sess *statex.SessionState, tool string, args map[string]any, op cartMutation) contractx.ToolResult {
	flavor, ok := stringArg(args, "flavor")
	if !ok {
		return contractx.ToolResult{Tool: tool, Error: "flavor is required"}
	}
	qty, err := intArg(args, "quantity")
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}
	}
	return cartResult(carts, sess, tool, op(ctx, sess, flavor, qty))
}

func cartResult(carts CartOps, sess *statex.SessionState, tool, message string) contractx.ToolResult {
	snap := carts.Snapshot(&sess.Cart)
	return contractx.ToolResult{
		Tool: tool,
		Result: CartOutput{
			Message: message,
			Items:   len(snap.Items),
			Total:   snap.Total.String(),
		},
	}
}

func computeChange(carts CartOps, sess *statex.SessionState, tool string, args map[string]any) contractx.ToolResult {
	raw, ok := args["paid"]
	if !ok {
		return contractx.ToolResult{Tool: tool, Error: "paid is required"}
	}
	paid, err := statex.ParseMoney(fmt.Sprint(raw))
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}
	}
	total := carts.Snapshot(&sess.Cart).Total
	if total == 0 {
		return contractx.ToolResult{Tool: tool, Error: "cart is empty"}
	}
	if paid < total {
		return contractx.ToolResult{Tool: tool, Error: fmt.Sprintf("paid %s is less than total %s", paid, total)}
	}
	return contractx.ToolResult{
		Tool:   tool,
		Result: ChangeOutput{Total: total.String(), Paid: paid.String(), Change: (paid - total).String()},
	}
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	return s, s != ""
}

// intArg reads an optional count in [0, MaxQuantity]; absent means 0.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, nil
	}
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case int:
		n = float64(x)
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%s must be a non-negative integer", key)
		}
		n = float64(i)
	default:
		return 0, fmt.Errorf("%s has unsupported type %T", key, v)
	}
	if n != math.Trunc(n) || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	if n > contractx.MaxQuantity {
		return 0, fmt.Errorf("%s must be at most %d", key, contractx.MaxQuantity)
	}
	return int(n), nil
}
