package cart

import (
	"fmt"
	"strings"

	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

type Line struct {
	Flavor    string       `json:"flavor"`
	Quantity  int          `json:"quantity"`
	UnitPrice statex.Money `json:"unit_price"`
	Subtotal  statex.Money `json:"subtotal"`
}

type Snapshot struct {
	Items []Line       `json:"items"`
	Total statex.Money `json:"total"`
}

// TakeSnapshot is a read-only view of the cart with computed totals.
func TakeSnapshot(cart *statex.Cart) Snapshot {
	snap := Snapshot{Items: []Line{}}
	if cart == nil {
		return snap
	}
	for _, it := range cart.Items {
		line := Line{
			Flavor:    it.Flavor,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal(),
		}
		snap.Items = append(snap.Items, line)
		snap.Total += line.Subtotal
	}
	return snap
}

func (e *Engine) Snapshot(cart *statex.Cart) Snapshot {
	return TakeSnapshot(cart)
}

// Show renders the cart for the customer.
func (e *Engine) Show(cart *statex.Cart) string {
	return Render(TakeSnapshot(cart))
}

func Render(snap Snapshot) string {
	if len(snap.Items) == 0 {
		return MsgEmpty
	}
	var b strings.Builder
	b.WriteString("Itens no carrinho:")
	for _, l := range snap.Items {
		fmt.Fprintf(&b, "\n- %d× %s: %s cada (subtotal %s)", l.Quantity, l.Flavor, l.UnitPrice, l.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: %s", snap.Total)
	return b.String()
}
