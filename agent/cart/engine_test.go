package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/extract"
	statex "github.com/tanpawarit/Chative-Sales-Order-Dialogue/agent/state"
)

type recordingObserver struct {
	calls int
	err   error
}

func (r *recordingObserver) CartChanged(context.Context, *statex.SessionState) error {
	r.calls++
	return r.err
}

func newTestEngine(t *testing.T, obs Observer) *Engine {
	t.Helper()
	resolver, err := catalog.NewResolver(catalog.DefaultMenu())
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	e, err := NewEngine(resolver, extract.NewPatternExtractor(), obs)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func newSession() *statex.SessionState {
	return statex.NewSessionState("cart-test", time.Now())
}

func TestAddAccumulatesSameFlavor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t, nil)
	sess := newSession()

	e.Add(ctx, sess, "Carne", 2)
	msg := e.Add(ctx, sess, "carne", 1)

	if len(sess.Cart.Items) != 1 || sess.Cart.Items[0].Quantity != 3 {
		t.Fatalf("cart = %+v, want one Carne line with quantity 3", sess.Cart.Items)
	}
	if want := "Atualizei o carrinho: agora são 3× Carne (subtotal R$78,00)."; msg != want {
		t.Fatalf("Add() = %q, want %q", msg, want)
	}
}

func TestAddPhraseQuantityWinsOverDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t, nil)
	sess := newSession()

	msg := e.Add(ctx, sess, "2 Frango", 1)
	if want := "Adicionei 2× Frango ao carrinho (subtotal R$54,00)."; msg != want {
		t.Fatalf("Add() = %q, want %q", msg, want)
	}
	snap := e.Snapshot(&sess.Cart)
	if len(snap.Items) != 1 || snap.Items[0].Quantity != 2 || snap.Items[0].Flavor != "Frango" {
		t.Fatalf("Snapshot() = %+v, want 2x Frango", snap)
	}
	if snap.Total != 5400 {
		t.Fatalf("Snapshot().Total = %v, want R$54,00", snap.Total)
	}
	if e.IsConfirmed(&sess.Cart) {
		t.Fatalf("cart confirmed after add")
	}

	e.Add(ctx, sess, "3 queijo", 5)
	if got := sess.Cart.Items[1].Quantity; got != 5 {
		t.Fatalf("explicit quantity 5 overridden, got %d", got)
	}
	e.Add(ctx, sess, "pizza", 0)
	if got := sess.Cart.Items[2].Quantity; got != 1 {
		t.Fatalf("zero quantity not floored to 1, got %d", got)
	}
}

func TestAddUnknownFlavorDoesNotMutate(t *testing.T) {
	t.Parallel()
	obs := &recordingObserver{}
	e := newTestEngine(t, obs)
	sess := newSession()
	sess.Cart.Confirmed = true

	if msg := e.Add(context.Background(), sess, "2 sushi", 1); msg != MsgFlavorNotFound {
		t.Fatalf("Add() = %q, want %q", msg, MsgFlavorNotFound)
	}
	if !sess.Cart.Empty() || !sess.Cart.Confirmed || obs.calls != 0 {
		t.Fatalf("failed add mutated cart: %+v, observer calls %d", sess.Cart, obs.calls)
	}
}

func TestMutationsUnconfirmAndNotify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	obs := &recordingObserver{}
	e := newTestEngine(t, obs)
	sess := newSession()

	e.Add(ctx, sess, "Carne", 3)
	e.SetConfirmation(ctx, sess, true)
	if !e.IsConfirmed(&sess.Cart) || obs.calls != 1 {
		t.Fatalf("after confirm: confirmed=%v calls=%d, want true 1", sess.Cart.Confirmed, obs.calls)
	}

	e.Remove(ctx, sess, "Carne", 1)
	if e.IsConfirmed(&sess.Cart) || obs.calls != 2 {
		t.Fatalf("after remove: confirmed=%v calls=%d, want false 2", sess.Cart.Confirmed, obs.calls)
	}

	e.SetConfirmation(ctx, sess, true)
	e.Add(ctx, sess, "queijo", 1)
	if e.IsConfirmed(&sess.Cart) {
		t.Fatalf("add kept confirmation")
	}

	e.SetConfirmation(ctx, sess, false)
	if obs.calls != 4 {
		t.Fatalf("unconfirm did not notify, calls=%d", obs.calls)
	}

	e.SetConfirmation(ctx, sess, true)
	if msg := e.Clear(ctx, sess); msg != MsgCleared {
		t.Fatalf("Clear() = %q", msg)
	}
	if !sess.Cart.Empty() || sess.Cart.Confirmed || obs.calls != 5 {
		t.Fatalf("after clear: %+v calls=%d", sess.Cart, obs.calls)
	}
}

func TestObserverErrorIsSwallowed(t *testing.T) {
	t.Parallel()
	obs := &recordingObserver{err: errors.New("profile unavailable")}
	e := newTestEngine(t, obs)
	sess := newSession()

	msg := e.Add(context.Background(), sess, "Milho", 1)
	if msg != "Adicionei 1× Milho ao carrinho (subtotal R$24,00)." {
		t.Fatalf("Add() = %q", msg)
	}
	if len(sess.Cart.Items) != 1 {
		t.Fatalf("observer error rolled back the add")
	}
}

func TestRemoveSemantics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t, nil)

	sess := newSession()
	if msg := e.Remove(ctx, sess, "Carne", 0); msg != MsgAlreadyEmpty {
		t.Fatalf("Remove() on empty cart = %q", msg)
	}

	e.Add(ctx, sess, "Carne", 3)
	if msg := e.Remove(ctx, sess, "Carne", 1); msg != "Atualizei Carne para 2× (subtotal R$52,00)." {
		t.Fatalf("Remove(Carne, 1) = %q", msg)
	}
	if sess.Cart.Items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", sess.Cart.Items[0].Quantity)
	}

	if msg := e.Remove(ctx, sess, "pizza", 0); msg != MsgNotInCart {
		t.Fatalf("Remove(pizza) = %q, want %q", msg, MsgNotInCart)
	}

	if msg := e.Remove(ctx, sess, "carne", 0); msg != "Removi Carne do carrinho." {
		t.Fatalf("Remove(carne) = %q", msg)
	}
	if !sess.Cart.Empty() {
		t.Fatalf("remove-all left %+v", sess.Cart.Items)
	}

	e.Add(ctx, sess, "2 queijo", 1)
	e.Add(ctx, sess, "Frango", 1)
	if msg := e.Remove(ctx, sess, "tira 5 de queijo", 0); msg != "Removi Queijo do carrinho." {
		t.Fatalf("Remove over quantity = %q", msg)
	}
	if len(sess.Cart.Items) != 1 || sess.Cart.Items[0].Flavor != "Frango" {
		t.Fatalf("cart = %+v, want only Frango", sess.Cart.Items)
	}
}

func TestRemoveFirstMatchInCartOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t, nil)
	sess := newSession()

	e.Add(ctx, sess, "Carne Seca", 1)
	e.Add(ctx, sess, "Carne", 2)
	if msg := e.Remove(ctx, sess, "carne", 0); msg != "Removi Carne Seca do carrinho." {
		t.Fatalf("Remove(carne) = %q, want Carne Seca removed first", msg)
	}
	if len(sess.Cart.Items) != 1 || sess.Cart.Items[0].Flavor != "Carne" || sess.Cart.Items[0].Quantity != 2 {
		t.Fatalf("cart = %+v, want only 2x Carne", sess.Cart.Items)
	}
}

func TestQuantityLimits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	obs := &recordingObserver{}
	e := newTestEngine(t, obs)
	sess := newSession()

	for _, phrase := range []string{"4000000000000000 carne", "99999999999999999999999 de carne", "1000 carne"} {
		if msg := e.Add(ctx, sess, phrase, 1); msg != MsgQuantityLimit {
			t.Fatalf("Add(%q) = %q, want %q", phrase, msg, MsgQuantityLimit)
		}
	}
	if msg := e.Add(ctx, sess, "carne", contractx.MaxQuantity+1); msg != MsgQuantityLimit {
		t.Fatalf("Add(explicit over limit) = %q", msg)
	}
	if msg := e.Add(ctx, sess, "0 carne", 1); msg != MsgZeroQuantity {
		t.Fatalf("Add(0 carne) = %q, want %q", msg, MsgZeroQuantity)
	}
	if !sess.Cart.Empty() || obs.calls != 0 {
		t.Fatalf("refused adds mutated cart: %+v, observer calls %d", sess.Cart.Items, obs.calls)
	}

	e.Add(ctx, sess, "Carne", contractx.MaxQuantity)
	if msg := e.Add(ctx, sess, "carne", 1); msg != MsgQuantityLimit {
		t.Fatalf("Add past line limit = %q", msg)
	}
	if got := sess.Cart.Items[0].Quantity; got != contractx.MaxQuantity {
		t.Fatalf("quantity = %d, want %d", got, contractx.MaxQuantity)
	}
	if total := sess.Cart.Total(); total != statex.Money(contractx.MaxQuantity*2600) {
		t.Fatalf("Total() = %v", total)
	}

	if msg := e.Remove(ctx, sess, "tira 0 de carne", 0); msg != MsgZeroQuantity {
		t.Fatalf("Remove(tira 0 de carne) = %q, want %q", msg, MsgZeroQuantity)
	}
	if got := sess.Cart.Items[0].Quantity; got != contractx.MaxQuantity {
		t.Fatalf("zero removal changed quantity to %d", got)
	}
}

func TestShow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t, nil)
	sess := newSession()

	if got := e.Show(&sess.Cart); got != MsgEmpty {
		t.Fatalf("Show() empty = %q", got)
	}
	e.Add(ctx, sess, "2 Frango", 1)
	e.Add(ctx, sess, "Banana", 1)
	want := "Itens no carrinho:\n" +
		"- 2× Frango: R$27,00 cada (subtotal R$54,00)\n" +
		"- 1× Banana: R$22,00 cada (subtotal R$22,00)\n" +
		"Total: R$76,00"
	if got := e.Show(&sess.Cart); got != want {
		t.Fatalf("Show() = %q, want %q", got, want)
	}
}

func TestSnapshotLines(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEngine(t, nil)
	sess := newSession()

	if diff := cmp.Diff(Snapshot{Items: []Line{}}, e.Snapshot(&sess.Cart)); diff != "" {
		t.Fatalf("empty Snapshot() mismatch (-want +got):\n%s", diff)
	}

	e.Add(ctx, sess, "3 carne", 1)
	e.Add(ctx, sess, "Romeu e Julieta", 1)
	want := Snapshot{
		Items: []Line{
			{Flavor: "Carne", Quantity: 3, UnitPrice: 2600, Subtotal: 7800},
			{Flavor: "Romeu e Julieta", Quantity: 1, UnitPrice: 2400, Subtotal: 2400},
		},
		Total: 10200,
	}
	if diff := cmp.Diff(want, e.Snapshot(&sess.Cart)); diff != "" {
		t.Fatalf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, TakeSnapshot(&sess.Cart)); diff != "" {
		t.Fatalf("TakeSnapshot() mismatch (-want +got):\n%s", diff)
	}
	if got := TakeSnapshot(nil); len(got.Items) != 0 || got.Total != 0 {
		t.Fatalf("TakeSnapshot(nil) = %+v", got)
	}
}
