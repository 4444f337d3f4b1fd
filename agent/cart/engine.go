package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/metrics"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/pkg/textmatch"
)

const (
	MsgFlavorNotFound = "Não encontrei esse sabor no cardápio."
	MsgNotInCart      = "Esse sabor não está no carrinho."
	MsgAlreadyEmpty   = "O carrinho já está vazio."
	MsgEmpty          = "O carrinho está vazio."
	MsgCleared        = "Esvaziei o carrinho. Pode recomeçar o pedido!"
	MsgZeroQuantity   = "Quantidade zero: não alterei o carrinho."
)

var MsgQuantityLimit = fmt.Sprintf("Posso anotar no máximo %d unidades de cada sabor.", contractx.MaxQuantity)

// Resolver finds the canonical catalog entry for a flavor phrase.
type Resolver interface {
	Resolve(ctx context.Context, phrase string) (catalog.Entry, bool)
}

// Observer is told about every cart mutation. Errors are logged, never
// returned to the caller of the cart operation.
type Observer interface {
	CartChanged(ctx context.Context, sess *statex.SessionState) error
}

type ObserverFunc func(ctx context.Context, sess *statex.SessionState) error

func (f ObserverFunc) CartChanged(ctx context.Context, sess *statex.SessionState) error {
	return f(ctx, sess)
}

// Engine applies cart operations to a session's cart.
type Engine struct {
	resolver  Resolver
	extractor contractx.QuantityExtractor
	observer  Observer
}

func NewEngine(resolver Resolver, extractor contractx.QuantityExtractor, observer Observer) (*Engine, error) {
	if resolver == nil {
		return nil, errors.New("catalog resolver is required")
	}
	if extractor == nil {
		return nil, errors.New("quantity extractor is required")
	}
	return &Engine{resolver: resolver, extractor: extractor, observer: observer}, nil
}

// Add puts a flavor in the cart. A count stated in the phrase wins over an
// explicit quantity of one or less. A line never exceeds MaxQuantity.
func (e *Engine) Add(ctx context.Context, sess *statex.SessionState, phrase string, explicitQty int) string {
	q := e.extractor.ExtractQuantity(ctx, phrase)
	if q.Zero && explicitQty <= 1 {
		return MsgZeroQuantity
	}
	qty := explicitQty
	if qty <= 1 && q.Count > 1 {
		qty = q.Count
	}
	if qty <= 0 {
		qty = 1
	}
	if qty > contractx.MaxQuantity {
		return MsgQuantityLimit
	}

	flavorPhrase := strings.TrimSpace(q.Flavor)
	if flavorPhrase == "" {
		flavorPhrase = phrase
	}
	entry, ok := e.resolver.Resolve(ctx, flavorPhrase)
	if !ok {
		return MsgFlavorNotFound
	}

	items := sess.Cart.Items
	var msg string
	if i := indexOfFlavor(items, entry.Name); i >= 0 {
		if items[i].Quantity > contractx.MaxQuantity-qty {
			return MsgQuantityLimit
		}
		items[i].Quantity += qty
		msg = fmt.Sprintf("Atualizei o carrinho: agora são %d× %s (subtotal %s).",
			items[i].Quantity, items[i].Flavor, items[i].Subtotal())
	} else {
		item := statex.CartItem{Flavor: entry.Name, UnitPrice: entry.Price, Quantity: qty}
		sess.Cart.Items = append(items, item)
		msg = fmt.Sprintf("Adicionei %d× %s ao carrinho (subtotal %s).", qty, item.Flavor, item.Subtotal())
	}

	e.changed(ctx, sess, "add")
	return msg
}

// Remove takes a flavor out of the cart. Without any quantity the whole line
// goes; otherwise the line is decremented. explicitQty <= 0 means none.
func (e *Engine) Remove(ctx context.Context, sess *statex.SessionState, phrase string, explicitQty int) string {
	if sess.Cart.Empty() {
		return MsgAlreadyEmpty
	}

	text := strings.TrimSpace(phrase)
	if explicitQty > 0 && strings.IndexFunc(text, unicode.IsDigit) < 0 {
		text = fmt.Sprintf("%d %s", explicitQty, text)
	}

	rem, ok := e.extractor.ExtractRemoval(ctx, text)
	if !ok || strings.TrimSpace(rem.Flavor) == "" {
		q := e.extractor.ExtractQuantity(ctx, phrase)
		rem = contractx.Removal{Flavor: q.Flavor, Count: q.Count}
		if strings.TrimSpace(rem.Flavor) == "" {
			rem.Flavor = phrase
		}
	}
	if rem.Zero && explicitQty <= 0 {
		return MsgZeroQuantity
	}
	if rem.Count <= 0 && !rem.All && explicitQty > 0 {
		rem.Count = explicitQty
	}
	if rem.Count <= 0 {
		rem.All = true
	}

	i := matchCartItem(sess.Cart.Items, rem.Flavor)
	if i < 0 {
		return MsgNotInCart
	}

	item := sess.Cart.Items[i]
	var msg string
	if rem.All || rem.Count >= item.Quantity {
		sess.Cart.Items = append(sess.Cart.Items[:i], sess.Cart.Items[i+1:]...)
		msg = fmt.Sprintf("Removi %s do carrinho.", item.Flavor)
	} else {
		sess.Cart.Items[i].Quantity -= rem.Count
		left := sess.Cart.Items[i]
		msg = fmt.Sprintf("Atualizei %s para %d× (subtotal %s).", left.Flavor, left.Quantity, left.Subtotal())
	}

	e.changed(ctx, sess, "remove")
	return msg
}

// Clear empties the cart and drops any confirmation.
func (e *Engine) Clear(ctx context.Context, sess *statex.SessionState) string {
	sess.Cart.Items = nil
	e.changed(ctx, sess, "clear")
	return MsgCleared
}

// SetConfirmation sets the confirmation flag. Only un-confirming notifies.
func (e *Engine) SetConfirmation(ctx context.Context, sess *statex.SessionState, confirmed bool) {
	if !confirmed {
		e.changed(ctx, sess, "unconfirm")
		return
	}
	sess.Cart.Confirmed = true
}

func (e *Engine) IsConfirmed(cart *statex.Cart) bool {
	return cart != nil && cart.Confirmed
}

func (e *Engine) changed(ctx context.Context, sess *statex.SessionState, op string) {
	sess.Cart.Confirmed = false
	metrics.RecordCartMutation(op)
	if e.observer == nil {
		return
	}
	if err := e.observer.CartChanged(ctx, sess); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("cart observer failed")
	}
}

func indexOfFlavor(items []statex.CartItem, flavor string) int {
	for i, it := range items {
		if strings.EqualFold(it.Flavor, flavor) {
			return i
		}
	}
	return -1
}

// matchCartItem returns the first item whose normalized name contains the
// target or is contained by it.
func matchCartItem(items []statex.CartItem, phrase string) int {
	target := textmatch.Normalize(phrase)
	if target == "" {
		return -1
	}
	for i, it := range items {
		name := textmatch.Normalize(it.Flavor)
		if name == "" {
			continue
		}
		if strings.Contains(name, target) || strings.Contains(target, name) {
			return i
		}
	}
	return -1
}
